package config

type WheelConfig struct {
	Options     []DefaultOption
	MaxOptions  int
	MaxWeight   float64
	MaxSegments int
}

type DefaultOption struct {
	Label string
	Color string
}

var DefaultWheelConfig = WheelConfig{
	Options: []DefaultOption{
		{
			Label: "🍎 Apple",
			Color: "#ef4444",
		},
		{
			Label: "🍌 Banana",
			Color: "#eab308",
		},
		{
			Label: "🍊 Orange",
			Color: "#f97316",
		},
		{
			Label: "🍇 Grape",
			Color: "#8b5cf6",
		},
	},
	MaxOptions:  50,
	MaxWeight:   10,
	MaxSegments: 5,
}
