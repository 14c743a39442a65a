// Command summarize runs a single pipeline job from the command line
// and prints the summary, without going through the HTTP server.
//
//	summarize youtube -url https://youtu.be/... [-start 60 -end 300]
//	summarize audio -file talk.mp3
//	summarize text -file notes.txt
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jchen-labs/media-summary/internal/artifacts"
	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/export"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/pipeline"
)

type cliOptions struct {
	configPath string
	mock       bool
	chunkSize  int
	language   string
	wordLimit  int
	instr      string
	trModel    string
	corrModel  string
	sumModel   string
	outputDir  string
	docx       bool
	asJSON     bool
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	var opts cliOptions
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to configuration file")
	fs.BoolVar(&opts.mock, "mock", false, "use mock providers (no network calls)")
	fs.IntVar(&opts.chunkSize, "chunk-size", 0, "chunk size in minutes (default from config)")
	fs.StringVar(&opts.language, "language", "", "target language (default from config)")
	fs.IntVar(&opts.wordLimit, "word-limit", 0, "summary word limit (50-2000, 0 = none)")
	fs.StringVar(&opts.instr, "instructions", "", "custom summary instructions")
	fs.StringVar(&opts.trModel, "transcription-model", "", "transcription model override")
	fs.StringVar(&opts.corrModel, "correction-model", "", "correction model override")
	fs.StringVar(&opts.sumModel, "summarization-model", "", "summarization model override")
	fs.StringVar(&opts.outputDir, "output", "", "write report files into this directory")
	fs.BoolVar(&opts.docx, "docx", false, "also render a docx report (requires -output)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the full job record as JSON")

	var url, file string
	var start, end float64
	switch cmd {
	case "youtube":
		fs.StringVar(&url, "url", "", "YouTube video URL")
		fs.Float64Var(&start, "start", 0, "clip start time in seconds")
		fs.Float64Var(&end, "end", 0, "clip end time in seconds")
	case "audio":
		fs.StringVar(&file, "file", "", "path to a local audio file")
	case "text":
		fs.StringVar(&file, "file", "", "path to a text file ('-' for stdin)")
	default:
		usage()
		os.Exit(2)
	}
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if opts.mock {
		cfg.Pipeline.UseMock = true
	}

	input, err := buildInput(cmd, url, file, start, end, cfg, opts)
	if err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	appLog := logger.New(cfg.Logging.Level)

	art, err := artifacts.New(cfg.Storage.ArtifactsDir)
	if err != nil {
		log.Fatalf("init artifact cache: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := pipeline.NewDefaultRunner(cfg, art, appLog, nil)
	rec := runner.Run(ctx, input)

	if opts.outputDir != "" && rec.Status == models.StatusCompleted {
		if _, err := export.WriteReport(opts.outputDir, rec); err != nil {
			appLog.Error(ctx, "write report: %v", err)
		}
		if opts.docx {
			if _, err := export.WriteDocx(opts.outputDir, rec); err != nil {
				appLog.Error(ctx, "write docx: %v", err)
			}
		}
	}

	printResult(rec, opts.asJSON)
	if rec.Status != models.StatusCompleted {
		os.Exit(1)
	}
}

func buildInput(cmd, url, file string, start, end float64, cfg *config.Config, opts cliOptions) (*models.PipelineInput, error) {
	chunkSize := opts.chunkSize
	if chunkSize == 0 {
		chunkSize = cfg.Pipeline.ChunkSizeMinutes
	}
	language := opts.language
	if language == "" {
		language = cfg.Pipeline.TargetLanguage
	}

	input := models.PipelineInput{
		ChunkSizeMinutes:    chunkSize,
		TargetLanguage:      language,
		SummaryWordLimit:    opts.wordLimit,
		SummaryInstructions: opts.instr,
		TranscriptionModel:  opts.trModel,
		CorrectionModel:     opts.corrModel,
		SummarizationModel:  opts.sumModel,
	}

	switch cmd {
	case "youtube":
		input.EntryPoint = models.EntryYouTube
		input.YouTubeURL = url
		if start > 0 {
			input.StartTime = &start
		}
		if end > 0 {
			input.EndTime = &end
		}
	case "audio":
		input.EntryPoint = models.EntryAudioFile
		input.AudioFilePath = file
	case "text":
		input.EntryPoint = models.EntryText
		content, err := readTextSource(file)
		if err != nil {
			return nil, err
		}
		input.TextContent = content
	}

	return models.NewPipelineInput(input)
}

func readTextSource(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}

func printResult(rec *models.PipelineResult, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			log.Fatalf("marshal result: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if rec.Status != models.StatusCompleted {
		fmt.Fprintf(os.Stderr, "job %s %s: %s\n", rec.JobID, rec.Status, rec.ErrorMessage)
		return
	}

	fmt.Println(rec.Summary.Summary)
	fmt.Fprintf(os.Stderr, "\n(%d 字, %d credits, %.1fs)\n",
		rec.Summary.WordCount, rec.CreditsConsumed, rec.ProcessingDuration)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: summarize <youtube|audio|text> [flags]

subcommands:
  youtube -url URL [-start S -end S]   summarize a YouTube video
  audio   -file PATH                   summarize a local audio file
  text    -file PATH                   summarize a text file ('-' = stdin)

run 'summarize <subcommand> -h' for flags.`)
}
