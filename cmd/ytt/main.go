// ytt — command-line front end for the youtubetranscript.dev API.
//
// Commands:
//
//	ytt transcribe <video>   extract a transcript from captions
//	ytt asr <video>          submit an ASR job and wait for it
//	ytt job <job-id>         show the current state of an ASR job
//	ytt batch <id> [id...]   extract transcripts for several videos
//	ytt history              list transcript history (remote)
//	ytt local [query]        list or search locally stored transcripts
//	ytt stats                show account credits and usage
//	ytt delete <video>       delete stored transcripts for a video
//
// Configuration comes from the environment: YTT_API_KEY (required),
// YTT_BASE_URL, YTT_CACHE_TTL, YTT_HISTORY_DB, REDIS_URL, YTT_DEBUG.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	transcript "github.com/anatolykoptev/go-transcript"
	"github.com/anatolykoptev/go-transcript/internal/store"
)

func main() {
	setupLogging()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	client, err := newClient()
	if err != nil && command != "local" {
		return err
	}

	switch command {
	case "transcribe":
		return cmdTranscribe(ctx, client, args)
	case "asr":
		return cmdASR(ctx, client, args)
	case "job":
		return cmdJob(ctx, client, args)
	case "batch":
		return cmdBatch(ctx, client, args)
	case "history":
		return cmdHistory(ctx, client, args)
	case "local":
		return cmdLocal(ctx, args)
	case "stats":
		return cmdStats(ctx, client)
	case "delete":
		return cmdDelete(ctx, client, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ytt <transcribe|asr|job|batch|history|local|stats|delete> [args]")
}

func setupLogging() {
	level := slog.LevelInfo
	if os.Getenv("YTT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newClient() (*transcript.Client, error) {
	apiKey := os.Getenv("YTT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("YTT_API_KEY is not set (get a key at https://youtubetranscript.dev/dashboard)")
	}

	opts := []transcript.Option{
		transcript.WithCache(transcript.NewCache(
			os.Getenv("REDIS_URL"),
			envDuration("YTT_CACHE_TTL", 15*time.Minute),
			envInt("YTT_CACHE_MAX_ENTRIES", 1000),
		)),
	}
	if base := os.Getenv("YTT_BASE_URL"); base != "" {
		opts = append(opts, transcript.WithBaseURL(base))
	}
	return transcript.NewClient(apiKey, opts...)
}

func openStore() (*store.Store, error) {
	return store.Open(os.Getenv("YTT_HISTORY_DB"))
}

func cmdTranscribe(ctx context.Context, client *transcript.Client, args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	lang := fs.String("lang", "", "target language (ISO 639-1)")
	source := fs.String("source", "", "caption source: auto, manual, asr")
	format := fs.String("format", "text", "output format: text, timestamped, srt, vtt, json")
	save := fs.Bool("save", true, "save to local history")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("transcribe: video URL or id required")
	}

	t, err := client.Transcribe(ctx, fs.Arg(0), transcript.TranscribeOptions{
		Language: *lang,
		Source:   *source,
	})
	if err != nil {
		return err
	}

	if *save {
		saveLocal(ctx, t)
	}
	return emit(t, *format)
}

func cmdASR(ctx context.Context, client *transcript.Client, args []string) error {
	fs := flag.NewFlagSet("asr", flag.ExitOnError)
	lang := fs.String("lang", "", "target language")
	format := fs.String("format", "text", "output format: text, timestamped, srt, vtt, json")
	poll := fs.Duration("poll", 10*time.Second, "poll interval")
	timeout := fs.Duration("timeout", 20*time.Minute, "max wait")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("asr: video URL or id required")
	}

	job, err := client.TranscribeASR(ctx, fs.Arg(0), transcript.ASROptions{Language: *lang})
	if err != nil {
		return err
	}
	slog.Info("job submitted", slog.String("job_id", job.JobID), slog.String("status", string(job.Status)))

	t, err := client.WaitForJob(ctx, job.JobID, transcript.WaitOptions{
		PollInterval: *poll,
		Timeout:      *timeout,
	})
	if err != nil {
		return err
	}

	saveLocal(ctx, t)
	return emit(t, *format)
}

func cmdJob(ctx context.Context, client *transcript.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("job: job id required")
	}
	job, err := client.GetJob(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("job %s: %s", job.JobID, job.Status)
	if job.VideoID != "" {
		fmt.Printf(" (video %s)", job.VideoID)
	}
	fmt.Println()
	if job.Transcript != nil {
		fmt.Printf("%d segments, %.0fs, %d words\n",
			len(job.Transcript.Segments), job.Transcript.Duration(), job.Transcript.WordCount())
	}
	return nil
}

func cmdBatch(ctx context.Context, client *transcript.Client, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	lang := fs.String("lang", "", "target language for all videos")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("batch: at least one video id required")
	}

	result, err := client.Batch(ctx, fs.Args(), *lang)
	if err != nil {
		return err
	}

	for _, t := range result.Completed {
		saveLocal(ctx, t)
		fmt.Printf("ok   %-14s %4d segments  %6.0fs\n", t.VideoID, len(t.Segments), t.Duration())
	}
	for _, f := range result.Failed {
		fmt.Printf("fail %v\n", f)
	}
	fmt.Printf("%d completed, %d failed\n", len(result.Completed), len(result.Failed))
	return nil
}

func cmdHistory(ctx context.Context, client *transcript.Client, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	search := fs.String("search", "", "search by video id, title or text")
	status := fs.String("status", "", "filter: all, queued, processing, succeeded, failed")
	limit := fs.Int("limit", 10, "results per page")
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	data, err := client.ListTranscripts(ctx, transcript.HistoryQuery{
		Search: *search,
		Status: *status,
		Limit:  *limit,
		Page:   *page,
	})
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(data)
}

func cmdLocal(ctx context.Context, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var entries []store.Entry
	if len(args) > 0 {
		entries, err = s.Search(ctx, strings.Join(args, " "), 20)
	} else {
		entries, err = s.List(ctx, 20)
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%-14s %-5s %5d words  %s  %s\n", e.VideoID, e.Language, e.Words, e.FetchedAt, e.Preview)
	}
	if len(entries) == 0 {
		fmt.Println("no local transcripts")
	}
	return nil
}

func cmdStats(ctx context.Context, client *transcript.Client) error {
	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("plan: %s\ncredits remaining: %d\ncredits used: %d\ntranscripts created: %d\n",
		stats.Plan, stats.CreditsRemaining, stats.CreditsUsed, stats.TranscriptsCreated)
	return nil
}

func cmdDelete(ctx context.Context, client *transcript.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("delete: video id required")
	}
	if _, err := client.DeleteTranscripts(ctx, args[0], nil); err != nil {
		return err
	}
	if s, err := openStore(); err == nil {
		defer s.Close()
		if err := s.Delete(ctx, args[0]); err != nil {
			slog.Warn("local delete failed", slog.Any("error", err))
		}
	}
	fmt.Printf("deleted transcripts for %s\n", args[0])
	return nil
}

// saveLocal stores a transcript in the local history DB; failures are
// logged, never fatal.
func saveLocal(ctx context.Context, t *transcript.Transcript) {
	s, err := openStore()
	if err != nil {
		slog.Warn("history store unavailable", slog.Any("error", err))
		return
	}
	defer s.Close()
	if err := s.Save(ctx, t); err != nil {
		slog.Warn("history save failed", slog.Any("error", err))
	}
}

func emit(t *transcript.Transcript, format string) error {
	switch format {
	case "text":
		fmt.Println(t.ToPlainText())
	case "timestamped":
		fmt.Println(t.ToTimestampedText())
	case "srt":
		fmt.Print(t.ToSRT())
	case "vtt":
		fmt.Print(t.ToVTT())
	case "json":
		return json.NewEncoder(os.Stdout).Encode(t)
	default:
		return fmt.Errorf("unknown format %q (text, timestamped, srt, vtt, json)", format)
	}
	return nil
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", slog.String("var", key), slog.String("value", v))
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
		slog.Warn("invalid integer, using default", slog.String("var", key), slog.String("value", v))
	}
	return def
}
