package analysis

// SurveyPoint is the outcome of one run in a parameter sweep.
type SurveyPoint struct {
	Param  float64
	Values []float64
}

// SurveyToASCII plots values against the swept parameter, one column per
// point.
func SurveyToASCII(data []SurveyPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal, maxVal = min(minVal, v), max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := blank(width, height)
	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}
	return render(canvas)
}
