package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/gw/tvtrades/internal/assembler"
	"github.com/gw/tvtrades/internal/config"
	"github.com/gw/tvtrades/internal/records"
	"github.com/gw/tvtrades/internal/report"
	"github.com/gw/tvtrades/internal/source"
	"github.com/gw/tvtrades/internal/tradelog"
)

const previewLines = 10

func main() {
	setLogger(false)

	cmd := "convert"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	switch cmd {
	case "convert":
		runConvert(cfg, args)
	case "set-folder":
		runSetFolder(cfg, args)
	case "last":
		runLast(cfg, args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tvtrades [command] [flags]

Commands:
  convert            Build the trade report from the newest exports (default)
  set-folder <path>  Remember the folder TradingView exports are saved to
  last               Show the last report saved to the database

Run 'tvtrades <command> -h' for command flags.`)
}

func setLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// conversion is one run over a folder of exports.
type conversion struct {
	files   *source.Files
	journal string
	result  *assembler.Result
	text    string
}

func convert(dir, journalPath string, kw source.Keywords) (*conversion, error) {
	files, err := source.Discover(dir, kw)
	if err != nil {
		return nil, err
	}
	if journalPath == "" && files.Journal != nil {
		journalPath = files.Journal.Path
	}

	in := assembler.Input{}
	if in.History, err = source.ReadRows(files.History.Path); err != nil {
		return nil, err
	}
	if in.Positions, err = source.ReadRows(files.Positions.Path); err != nil {
		return nil, err
	}
	if journalPath != "" {
		if in.Journal, err = source.ReadRows(journalPath); err != nil {
			return nil, err
		}
	}

	res, err := assembler.Convert(in)
	if err != nil {
		return nil, err
	}
	text, err := report.Format(res.Trades)
	if err != nil {
		return nil, err
	}

	return &conversion{files: files, journal: journalPath, result: res, text: text}, nil
}

func runConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	dir := fs.String("dir", cfg.Folder, "folder containing the TradingView exports")
	journal := fs.String("journal", "", "journal export to use instead of the newest one in -dir")
	out := fs.String("out", cfg.OutputDir, "directory for the dated report file (empty to skip)")
	db := fs.String("db", cfg.DBPath, "SQLite database to save the export to (empty to skip)")
	clip := fs.Bool("clipboard", cfg.Clipboard, "copy the report to the clipboard")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	setLogger(*debug)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "No export folder set. Run 'tvtrades set-folder <path>' or pass -dir.")
		os.Exit(1)
	}

	kw := source.Keywords{
		History:   cfg.HistoryKeyword,
		Positions: cfg.PositionsKeyword,
		Journal:   cfg.JournalKeyword,
	}
	conv, err := convert(*dir, *journal, kw)
	if err != nil {
		if msg := failureMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		} else {
			slog.Error("conversion failed", "err", err)
		}
		os.Exit(1)
	}

	printStatus(conv)

	if *clip {
		if err := clipboard.WriteAll(conv.text); err != nil {
			fmt.Printf("clipboard: failed (%v)\n", err)
		} else {
			fmt.Println("Copied to clipboard!")
		}
	}

	if *out != "" {
		path, err := saveReport(*out, conv.text)
		if err != nil {
			fmt.Printf("report file: failed (%v)\n", err)
		} else {
			fmt.Printf("Saved report to %s\n", path)
		}
	}

	if *db != "" {
		if err := saveExport(*db, conv); err != nil {
			fmt.Printf("database: failed (%v)\n", err)
		} else {
			fmt.Printf("Saved export to %s\n", *db)
		}
	}
}

// failureMessage explains a conversion error to the user, or returns "" for
// errors that only the log can describe.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return fmt.Sprintf("Missing export: %v", err)
	case errors.Is(err, records.ErrMalformedRecord):
		return fmt.Sprintf("Export could not be parsed: %v", err)
	case errors.Is(err, source.ErrUnreadable):
		return fmt.Sprintf("Could not read the exports (%v). Close the CSV files and try again.", err)
	}
	return ""
}

func printStatus(conv *conversion) {
	journal := "none"
	if conv.journal != "" {
		journal = conv.journal
	}
	fmt.Printf("History:   %s\n", conv.files.History.Name)
	fmt.Printf("Positions: %s\n", conv.files.Positions.Name)
	fmt.Printf("Journal:   %s\n", journal)
	fmt.Printf("Trades:    %d\n", len(conv.result.Trades))
	if n := len(conv.result.Warnings); n > 0 {
		fmt.Printf("Warnings:  %d (see log)\n", n)
	}
	fmt.Println()

	lines := strings.Split(strings.TrimSuffix(conv.text, "\n"), "\n")
	for i, line := range lines {
		if i == previewLines+1 {
			fmt.Printf("... %d more\n", len(lines)-i)
			break
		}
		fmt.Println(line)
	}
	fmt.Println()
}

func saveReport(dir, text string) (string, error) {
	w, err := report.NewWriter(dir, "trades")
	if err != nil {
		return "", err
	}
	return w.Write(text)
}

func saveExport(path string, conv *conversion) error {
	store, err := tradelog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	src := tradelog.Sources{
		History:   conv.files.History.Path,
		Positions: conv.files.Positions.Path,
		Journal:   conv.journal,
	}
	export := tradelog.NewExport(src, conv.result.Trades, conv.text, time.Now())
	return store.SaveExport(context.Background(), export)
}

func runSetFolder(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tvtrades set-folder <path>")
		os.Exit(1)
	}

	if err := config.SaveFolder(cfg.SettingsPath, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Folder not saved: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Folder saved to %s\n", cfg.SettingsPath)
}

func runLast(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("last", flag.ExitOnError)
	db := fs.String("db", cfg.DBPath, "SQLite database the export was saved to")
	openOnly := fs.Bool("open", false, "show open trades only")
	fs.Parse(args)

	if *db == "" {
		fmt.Fprintln(os.Stderr, "No database set. Pass -db or set TVTRADES_DB.")
		os.Exit(1)
	}

	store, err := tradelog.Open(*db)
	if err != nil {
		slog.Error("opening db", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if *openOnly {
		rows, err := store.OpenTrades(ctx)
		if err != nil {
			slog.Error("query failed", "err", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			fmt.Println("No open trades.")
			return
		}
		fmt.Printf("%-20s %-6s %-20s %12s %10s %12s %12s\n",
			"Symbol", "Side", "Start", "AvgEntry", "Amount", "StopLoss", "Target")
		fmt.Println("---------------------------------------------------------------------------------------------------")
		for _, t := range rows {
			fmt.Printf("%-20s %-6s %-20s %12s %10s %12s %12s\n",
				t.Symbol, t.Side, t.StartTime, t.AvgEntryPrice, t.TotalEntryAmount,
				t.LastStopLoss, t.LastPriceTarget)
		}
		return
	}

	export, err := store.LastExport(ctx)
	if errors.Is(err, tradelog.ErrNoExport) {
		fmt.Println("No export saved. Run 'tvtrades convert -db <path>' first.")
		return
	}
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("Export %s at %s\n", export.ExportID, export.CreatedTime.Local().Format(records.TimeLayout))
	fmt.Printf("From %s, %s", export.HistoryFile, export.PositionsFile)
	if export.JournalFile != "" {
		fmt.Printf(", %s", export.JournalFile)
	}
	fmt.Printf(" (%d trades)\n\n", len(export.Trades))
	fmt.Print(export.Report)
}
