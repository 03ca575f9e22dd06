package main

import "github.com/spf13/viper"

// Config holds every compiler flag/setting after flags, environment
// variables (MORTARC_*), and an optional .mortarc.yaml have all been
// merged by viper.
type Config struct {
	Output       string
	Pretty       bool
	Check        bool
	VerboseLexer bool
	ShowSource   bool
	Lang         string
	NoColor      bool
}

// loadConfig reads back every value bound to viper by the root command's
// flags into a plain struct, separating flag registration from the
// settings a run actually consumes.
func loadConfig() Config {
	return Config{
		Output:       viper.GetString("output"),
		Pretty:       viper.GetBool("pretty"),
		Check:        viper.GetBool("check"),
		VerboseLexer: viper.GetBool("verbose-lexer"),
		ShowSource:   viper.GetBool("show-source"),
		Lang:         viper.GetString("lang"),
		NoColor:      viper.GetBool("no-color"),
	}
}
