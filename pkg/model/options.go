package model

import "time"

// ChartOptions is the fixed cosmetic configuration of the people count
// chart. Surfaces that draw a real chart pass it through untouched.
type ChartOptions struct {
	Type    string         `json:"type"`
	Dataset DatasetOptions `json:"dataset"`
	Anim    AnimOptions    `json:"animation"`
	Legend  LegendOptions  `json:"legend"`
	Scales  ScaleOptions   `json:"scales"`
}

type DatasetOptions struct {
	Label            string  `json:"label"`
	BorderColor      string  `json:"borderColor"`
	BackgroundColor  string  `json:"backgroundColor"`
	BorderWidth      int     `json:"borderWidth"`
	Tension          float64 `json:"tension"`
	Fill             bool    `json:"fill"`
	PointRadius      int     `json:"pointRadius"`
	PointHoverRadius int     `json:"pointHoverRadius"`
}

type AnimOptions struct {
	// 毫秒, 给前端直接用
	DurationMillis int64  `json:"duration"`
	Easing         string `json:"easing"`
}

type LegendOptions struct {
	Color      string `json:"color"`
	FontSize   int    `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
}

type ScaleOptions struct {
	TickColor   string `json:"tickColor"`
	GridColor   string `json:"gridColor"`
	BeginAtZero bool   `json:"beginAtZero"`
}

const DatasetLabel = "People Count"

func DefaultChartOptions() ChartOptions {
	anim := 800 * time.Millisecond
	return ChartOptions{
		Type: "line",
		Dataset: DatasetOptions{
			Label:            DatasetLabel,
			BorderColor:      "rgba(0, 255, 255, 1)",
			BackgroundColor:  "rgba(0, 255, 255, 0.2)",
			BorderWidth:      3,
			Tension:          0.4,
			Fill:             true,
			PointRadius:      4,
			PointHoverRadius: 6,
		},
		Anim: AnimOptions{
			DurationMillis: anim.Milliseconds(),
			Easing:         "easeOutQuart",
		},
		Legend: LegendOptions{
			Color:      "#ffffff",
			FontSize:   14,
			FontWeight: "bold",
		},
		Scales: ScaleOptions{
			TickColor:   "#ffffff",
			GridColor:   "rgba(255,255,255,0.1)",
			BeginAtZero: true,
		},
	}
}
