// Command grade scores budget worksheets from the command line.
// Usage:
//
//	go run ./cmd/grade -file worksheet.docx [-rate 5] [-tolerance 0.5] [-format json] [-out report.json]
//	go run ./cmd/grade -dir submissions/ [-concurrency 4] [-format xlsx] [-out reports/]
//
// Configuration (remote providers, grading mode) is read from the same
// BUDGETGRADER_ environment variables as the server.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"budgetgrader/internal/app"
	"budgetgrader/internal/config"
	"budgetgrader/internal/decoder"
	"budgetgrader/internal/domain"
	"budgetgrader/internal/report"
	"budgetgrader/internal/service"
)

var errSomeFailed = errors.New("one or more worksheets failed")

type options struct {
	file        string
	dir         string
	rate        float64
	tolerance   float64
	format      string
	out         string
	concurrency int
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "worksheet to grade (docx, xlsx, pdf)")
	flag.StringVar(&opts.dir, "dir", "", "grade every worksheet in this directory")
	flag.Float64Var(&opts.rate, "rate", -1, "inflation rate in percent (default from config)")
	flag.Float64Var(&opts.tolerance, "tolerance", -1, "absolute tolerance (default from config)")
	flag.StringVar(&opts.format, "format", "json", "report format: json, yaml, csv, xlsx, pdf")
	flag.StringVar(&opts.out, "out", "", "output file (-file) or directory (-dir); stdout when empty with -file")
	flag.IntVar(&opts.concurrency, "concurrency", 0, "worksheets graded in parallel with -dir (default from config)")
	flag.Parse()

	if err := run(opts); err != nil {
		if errors.Is(err, errSomeFailed) {
			log.Print(err)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func run(opts options) error {
	if (opts.file == "") == (opts.dir == "") {
		return errors.New("exactly one of -file or -dir is required")
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.concurrency > 0 {
		cfg.Grading.BatchConcurrency = opts.concurrency
	}

	pipeline, err := app.Build(cfg)
	if err != nil {
		return fmt.Errorf("building grading pipeline: %w", err)
	}

	gradeOpts := pipeline.Service.DefaultOptions()
	if opts.rate >= 0 {
		gradeOpts.InflationRate = opts.rate
	}
	if opts.tolerance >= 0 {
		gradeOpts.Tolerance = opts.tolerance
	}
	if err := gradeOpts.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.file != "" {
		return gradeFile(ctx, pipeline.Service, opts.file, opts.out, format, &gradeOpts)
	}
	return gradeDir(ctx, pipeline.Batch, opts.dir, opts.out, format, &gradeOpts)
}

func gradeFile(ctx context.Context, svc service.GradingService, path, out string, format report.Format, gradeOpts *domain.GradingOptions) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := svc.Grade(ctx, service.GradeInput{
		FileName: filepath.Base(path),
		Content:  content,
		Options:  gradeOpts,
	})
	if err != nil {
		return fmt.Errorf("grading %s: %w", path, err)
	}
	printScore(os.Stderr, filepath.Base(path), result.Report)

	if out == "" {
		return report.Render(os.Stdout, result.Report, format)
	}
	return writeReport(out, result.Report, format)
}

func gradeDir(ctx context.Context, batch *service.BatchGrader, dir, out string, format report.Format, gradeOpts *domain.GradingOptions) error {
	paths, err := worksheetsIn(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no docx, xlsx or pdf files in %s", dir)
	}

	if out == "" {
		out = "."
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	inputs := make([]service.GradeInput, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, service.GradeInput{FileName: filepath.Base(p), Content: content, Options: gradeOpts})
	}

	failed := 0
	for _, item := range batch.GradeAll(ctx, inputs) {
		if item.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%-40s FAILED: %v\n", item.FileName, item.Err)
			continue
		}
		printScore(os.Stderr, item.FileName, item.Result.Report)

		stem := strings.TrimSuffix(item.FileName, filepath.Ext(item.FileName))
		target := filepath.Join(out, stem+"."+string(format))
		if err := writeReport(target, item.Result.Report, format); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errSomeFailed, failed, len(inputs))
	}
	return nil
}

// worksheetsIn lists the gradable files directly inside dir, sorted by name.
func worksheetsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if _, err := decoder.FileTypeOf(e.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func writeReport(path string, r *domain.ScoreReport, format report.Format) error {
	var buf bytes.Buffer
	if err := report.Render(&buf, r, format); err != nil {
		return fmt.Errorf("rendering report for %s: %w", r.StudentName, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printScore(w io.Writer, name string, r *domain.ScoreReport) {
	verdict := "FAIL"
	if report.Passed(r) {
		verdict = "PASS"
	}
	fmt.Fprintf(w, "%-40s %-25s %3d/%-3d %6.2f%% %s\n",
		name, r.StudentName, r.CorrectCount, r.TotalCalculations, r.Percentage, verdict)
}
