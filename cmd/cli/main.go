package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wavescribe/WaveScribe/internal/analysis"
	"github.com/wavescribe/WaveScribe/internal/classify"
	"github.com/wavescribe/WaveScribe/internal/service"
	"github.com/wavescribe/WaveScribe/pkg/logger"
)

// Global flags
var (
	dbPath   string
	tempDir  string
	modelDir string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("WAVESCRIBE_DB_PATH", "wavescribe.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("WAVESCRIBE_TEMP_DIR", "/tmp/wavescribe"), "Directory for temporary audio files")
	flag.StringVar(&modelDir, "models", getEnvOrDefault("WAVESCRIBE_MODEL_DIR", "models"), "Directory holding classification model artifacts")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService() (*service.AnalysisService, error) {
	return service.NewAnalysisService(service.Options{
		DBPath:   dbPath,
		ModelDir: modelDir,
		TempDir:  tempDir,
	})
}

func main() {
	godotenv.Load()
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze()
	case "youtube":
		handleYouTube()
	case "list":
		handleList()
	case "get":
		handleGet()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
__        __             ____            _ _
\ \      / /_ ___   _____/ ___|  ___ _ __(_) |__   ___
 \ \ /\ / / _` + "`" + ` \ \ / / _ \___ \ / __| '__| | '_ \ / _ \
  \ V  V / (_| |\ V /  __/___) | (__| |  | | |_) |  __/
   \_/\_/ \__,_| \_/ \___|____/ \___|_|  |_|_.__/ \___|

            Music Analysis CLI Tool
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("Usage: wavescribe <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze <audio_file> [--components rhythm,structure,...] [--json]")
	fmt.Println("  youtube <url> [--components ...] [--json]")
	fmt.Println("  list")
	fmt.Println("  get <id> [--json]")
	fmt.Println("  delete <id>")
	fmt.Println()
	fmt.Println("Global options:")
	fmt.Println("  --db <path>      SQLite database path")
	fmt.Println("  --temp <dir>     Temporary file directory")
	fmt.Println("  --models <dir>   Classification model directory")
}

// splitArgs separates a leading positional argument from the trailing flags.
func splitArgs(args []string) (positional string, flagArgs []string) {
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && positional == "" {
			positional = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}
	return positional, flagArgs
}

func parseComponents(raw string) (analysis.Request, error) {
	if raw == "" {
		return analysis.FullRequest(), nil
	}

	var req analysis.Request
	for _, c := range strings.Split(raw, ",") {
		switch strings.TrimSpace(c) {
		case "rhythm":
			req.Rhythm = true
		case "structure":
			req.Structure = true
		case "classification":
			req.Classification = true
		case "tonal":
			req.Tonal = true
		default:
			return req, fmt.Errorf("unknown component %q", strings.TrimSpace(c))
		}
	}
	return req, nil
}

func handleAnalyze() {
	log := logger.GetLogger()

	audioPath, flagArgs := splitArgs(os.Args[2:])

	cmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	components := cmd.String("components", "", "Comma-separated components (default: all)")
	asJSON := cmd.Bool("json", false, "Print the full result as JSON")
	cmd.Parse(flagArgs)

	if audioPath == "" {
		fmt.Println("Error: audio file path required")
		fmt.Println("Usage: wavescribe analyze <audio_file> [--components rhythm,tonal] [--json]")
		os.Exit(1)
	}

	req, err := parseComponents(*components)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	id, result, err := svc.AnalyzeFile(ctx, audioPath, req)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if *asJSON {
		printJSON(result)
	} else {
		printSummary(id, result)
	}
}

func handleYouTube() {
	log := logger.GetLogger()

	url, flagArgs := splitArgs(os.Args[2:])

	cmd := flag.NewFlagSet("youtube", flag.ExitOnError)
	components := cmd.String("components", "", "Comma-separated components (default: all)")
	asJSON := cmd.Bool("json", false, "Print the full result as JSON")
	cmd.Parse(flagArgs)

	if url == "" {
		fmt.Println("Error: YouTube URL required")
		fmt.Println("Usage: wavescribe youtube <url> [--components ...] [--json]")
		os.Exit(1)
	}

	req, err := parseComponents(*components)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	id, result, err := svc.AnalyzeYouTube(ctx, url, req)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if *asJSON {
		printJSON(result)
	} else {
		printSummary(id, result)
	}
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	records, err := svc.ListAnalyses(0)
	if err != nil {
		log.Fatalf("Failed to list analyses: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No stored analyses.")
		return
	}

	fmt.Printf("%-36s  %-28s  %8s  %6s  %-8s  %s\n", "ID", "FILE", "DURATION", "BPM", "KEY", "SECTIONS")
	for _, rec := range records {
		name := rec.Filename
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		fmt.Printf("%-36s  %-28s  %7.1fs  %6.1f  %-8s  %d\n",
			rec.ID, name, rec.DurationSec, rec.BPM, rec.Key+" "+rec.Scale, rec.SectionCount)
	}
	fmt.Printf("\nTotal: %d\n", len(records))
}

func handleGet() {
	log := logger.GetLogger()

	id, flagArgs := splitArgs(os.Args[2:])

	cmd := flag.NewFlagSet("get", flag.ExitOnError)
	asJSON := cmd.Bool("json", false, "Print the full result as JSON")
	cmd.Parse(flagArgs)

	if id == "" {
		fmt.Println("Error: analysis ID required")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	record, result, err := svc.GetAnalysis(id)
	if err != nil {
		log.Fatalf("Failed to get analysis: %v", err)
	}

	if *asJSON {
		printJSON(result)
		return
	}

	fmt.Printf("File:     %s (%s)\n", record.Filename, record.Source)
	fmt.Printf("Created:  %s\n", record.CreatedAt.Format(time.RFC3339))
	printSummary(record.ID, result)
}

func handleDelete() {
	log := logger.GetLogger()

	id, _ := splitArgs(os.Args[2:])
	if id == "" {
		fmt.Println("Error: analysis ID required")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer svc.Close()

	if err := svc.DeleteAnalysis(id); err != nil {
		log.Fatalf("Failed to delete analysis: %v", err)
	}
	fmt.Printf("Deleted analysis %s\n", id)
}

func printJSON(result *analysis.FullAnalysisResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to serialize result: %v", err)
	}
	fmt.Println(string(data))
}

func printSummary(id string, result *analysis.FullAnalysisResult) {
	if id != "" {
		fmt.Printf("ID:       %s\n", id)
	}
	fmt.Printf("Duration: %.1fs\n", result.Duration)

	if result.Rhythm != nil {
		fmt.Printf("Tempo:    %.1f BPM (confidence %.2f, %d beats, %d onsets)\n",
			result.Rhythm.BPM, result.Rhythm.Confidence, len(result.Rhythm.Beats), len(result.Rhythm.Onsets))
	}
	if result.Tonal != nil {
		fmt.Printf("Key:      %s %s (strength %.2f)\n", result.Tonal.Key, result.Tonal.Scale, result.Tonal.Strength)
	}
	if result.Structure != nil {
		fmt.Printf("Sections: %d\n", len(result.Structure.Sections))
		for _, sec := range result.Structure.Sections {
			fmt.Printf("  %7.1fs - %7.1fs  %-8s energy=%.2f\n", sec.Start, sec.End, sec.Label, sec.Energy)
		}
	}
	if result.Classification != nil {
		printDimension("Genre", result.Classification.Genre)
		printDimension("Mood", result.Classification.Mood)
		printDimension("Tags", result.Classification.Tags)
	}

	for name, status := range result.Components {
		if !status.OK {
			fmt.Printf("Warning:  %s failed: %s\n", name, status.Error)
		}
	}
}

func printDimension(name string, d classify.Distribution) {
	if !d.Available {
		fmt.Printf("%-9s unavailable (no model)\n", name+":")
		return
	}
	fmt.Printf("%-9s %s (%.2f)\n", name+":", d.Label, d.Confidence)
}
