package internal

import "fmt"

// ProgressView is the human readable rendition of a transfer progress.
type ProgressView struct {
	Percent string `json:"percent"`
	ETA     string `json:"eta"`
	Speed   string `json:"speed"`
}

func NewProgressView(progress, total int64, speed float64) ProgressView {
	v := ProgressView{Percent: "-", ETA: "-", Speed: FormatSpeed(speed)}

	if total > 0 {
		v.Percent = fmt.Sprintf("%.2f%%", float64(progress)*100/float64(total))
	}
	if eta, ok := ETA(progress, total, speed); ok {
		v.ETA = fmt.Sprintf("%.2f", eta)
	}

	return v
}

// ETA in seconds, false when the speed or the total are unknown.
func ETA(progress, total int64, speed float64) (float64, bool) {
	if speed <= 0 || total <= 0 {
		return 0, false
	}
	return float64(total-progress) / speed, true
}

func FormatSpeed(bps float64) string {
	switch {
	case bps < 2e3:
		return fmt.Sprintf("%.0fbps", bps)
	case bps < 2e6:
		return fmt.Sprintf("%.0fKbps", bps/1e3)
	case bps < 2e9:
		return fmt.Sprintf("%.0fMbps", bps/1e6)
	default:
		return fmt.Sprintf("%.0fGbps", bps/1e9)
	}
}
