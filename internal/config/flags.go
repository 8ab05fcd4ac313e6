package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagListen     = flag.String("listen", "", "Streaming server listen address")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagCols       = flag.Int("cols", 0, "Cloth grid columns")
	flagRows       = flag.Int("rows", 0, "Cloth grid rows")
	flagNoWind     = flag.Bool("no-wind", false, "Disable the wind generator")
	flagCollision  = flag.Bool("self-collision", false, "Enable approximate self-collision")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagListen != "" {
		cfg.Server.Listen = *flagListen
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagCols > 0 {
		cfg.Cloth.Cols = *flagCols
	}
	if *flagRows > 0 {
		cfg.Cloth.Rows = *flagRows
	}
	if *flagNoWind {
		cfg.Wind.Enabled = false
	}
	if *flagCollision {
		cfg.Collision.Enabled = true
	}
}
