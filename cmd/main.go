package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"epub_reader/library"
	"epub_reader/nav"
	"epub_reader/ui"
	"epub_reader/utils"
)

var (
	cfgFile    string
	dark       bool
	continuous bool
	fontSize   string
	pick       bool
)

var rootCmd = &cobra.Command{
	Use:   "epub_reader [book.epub]",
	Short: "Read EPUB books in the terminal",
	Long: `epub_reader shows the books found in your library folders and reads
them one chapter at a time or as one continuous scroll, with a table
of contents that follows your position.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return errors.New("stdout is not a TTY (refusing to start the reader)")
		}

		conf, err := utils.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if dark {
			conf.Reader.Theme = ui.ThemeDark
		}
		if continuous {
			conf.Reader.Mode = nav.Continuous.String()
		}
		if fontSize != "" {
			conf.Reader.FontSize = fontSize
		}

		log, done, err := utils.NewLogger(conf.Log)
		if err != nil {
			return err
		}
		defer done()

		opts := ui.Options{Config: conf, ConfigPath: cfgFile, Pick: pick, Log: log}
		if len(args) == 1 {
			opts.Path = args[0]
		}
		log.Info("Starting", zap.String("config", cfgFile), zap.String("book", opts.Path))
		return ui.RunApp(opts)
	},
}

var tocCmd = &cobra.Command{
	Use:   "toc <book.epub>",
	Short: "Print the table of contents of a book as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := library.Open(args[0], zap.NewNop())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(book.TOC)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", utils.DefaultConfigPath(), "config file path")
	rootCmd.Flags().BoolVar(&dark, "dark", false, "start with the dark theme")
	rootCmd.Flags().BoolVar(&continuous, "continuous", false, "start in continuous mode")
	rootCmd.Flags().StringVar(&fontSize, "font-size", "", "font size, e.g. 120% or 1.2rem")
	rootCmd.Flags().BoolVar(&pick, "pick", false, "choose a book with the system file dialog")
	rootCmd.AddCommand(tocCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
