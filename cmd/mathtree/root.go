package main

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagGiven  []string
	flagPrec   uint
	flagFormat string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Parse and evaluate math expressions",
	Long: appName + " parses math expressions in a single pass and evaluates them,\n" +
		"either in float64 or to arbitrary precision.\n\n" +
		"Variables come from the vars of the config file and from --given, in that order.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "",
		"config file (default $"+envConfig+" or ~/.config/"+appName+"/config.yml)")
	pf.StringArrayVar(&flagGiven, "given", nil,
		"name=value variable definition (repeatable)")
	pf.UintVar(&flagPrec, "prec", 64,
		"precision of calculations in bits, or 0 for float64")
	pf.StringVar(&flagFormat, "fmt", "",
		"result formatting verb (default %g)")
}

// loadSettings merges the config file with the flags of cmd.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path, must, err := configPath(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(path, must)
	if err != nil {
		return nil, err
	}
	var prec *uint
	if cmd.Flags().Changed("prec") {
		prec = &flagPrec
	}
	return newSettings(cfg, prec, flagFormat, flagGiven)
}
