// Package gradereplay implements the operator command that replays stored
// grade logs and prints the resulting grades.
package gradereplay

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	platformcmd "github.com/louisbranch/gradebook/internal/platform/cmd"
	apperrors "github.com/louisbranch/gradebook/internal/platform/errors"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/machine"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/render"
	"github.com/louisbranch/gradebook/internal/services/grading/gradebook"
	"github.com/louisbranch/gradebook/internal/services/grading/storage/sqlite"
)

// Config holds gradereplay command configuration.
type Config struct {
	DBPath          string `env:"GRADEBOOK_GRADES_DB_PATH" envDefault:"data/grades.db"`
	OpportunityID   string
	ParticipationID string
	CourseID        string
	Average         bool
	JSONOutput      bool
	Locale          string
	LegacyAttempts  string        `env:"GRADEBOOK_LEGACY_ATTEMPTS" envDefault:"singleton"`
	Timeout         time.Duration `env:"GRADEBOOK_REPLAY_TIMEOUT" envDefault:"1m"`
}

// ParseConfig reads environment defaults and then flags into a Config.
// Flags registered here start empty; env values fill them before args apply.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db-path", "", "path to grades sqlite database (default: GRADEBOOK_GRADES_DB_PATH or data/grades.db)")
	fs.StringVar(&cfg.OpportunityID, "opportunity", "", "grading opportunity ID to replay")
	fs.StringVar(&cfg.ParticipationID, "participation", "", "participation ID to replay")
	fs.StringVar(&cfg.CourseID, "course", "", "course ID to print the full grade table for")
	fs.BoolVar(&cfg.Average, "average", false, "print the opportunity average across participations (requires -opportunity)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.StringVar(&cfg.Locale, "locale", "", "BCP 47 locale for human-readable grades (default: en-US)")
	fs.StringVar(&cfg.LegacyAttempts, "legacy-attempts", "", "grouping for changes without an attempt, singleton or merged (default: GRADEBOOK_LEGACY_ATTEMPTS or singleton)")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "overall timeout (default: GRADEBOOK_REPLAY_TIMEOUT or 1m)")
	if err := platformcmd.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Process exit statuses, keyed by the gRPC code of the failure.
const (
	ExitFailure            = 1
	ExitInvalidArgument    = 2
	ExitFailedPrecondition = 3
	ExitNotFound           = 4
	ExitUnavailable        = 5
)

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch apperrors.CodeOf(err).GRPCCode() {
	case codes.InvalidArgument:
		return ExitInvalidArgument
	case codes.FailedPrecondition:
		return ExitFailedPrecondition
	case codes.NotFound:
		return ExitNotFound
	case codes.Unavailable:
		return ExitUnavailable
	default:
		return ExitFailure
	}
}

func invalidFlag(message string) error {
	return apperrors.New(apperrors.CodeInvalidArgument, message)
}

type mode int

const (
	modePair mode = iota
	modeTable
	modeAverage
)

func resolveMode(cfg Config) (mode, error) {
	opportunity := strings.TrimSpace(cfg.OpportunityID)
	participation := strings.TrimSpace(cfg.ParticipationID)
	course := strings.TrimSpace(cfg.CourseID)

	switch {
	case course != "":
		if opportunity != "" || participation != "" || cfg.Average {
			return 0, invalidFlag("-course cannot be combined with -opportunity, -participation or -average")
		}
		return modeTable, nil
	case cfg.Average:
		if opportunity == "" {
			return 0, invalidFlag("-average requires -opportunity")
		}
		if participation != "" {
			return 0, invalidFlag("-average cannot be combined with -participation")
		}
		return modeAverage, nil
	default:
		if opportunity == "" || participation == "" {
			return 0, invalidFlag("-opportunity and -participation are required (or use -course)")
		}
		return modePair, nil
	}
}

func resolveTag(locale string) (language.Tag, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.AmericanEnglish, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, apperrors.Wrap(apperrors.CodeInvalidArgument, fmt.Sprintf("invalid -locale %q", locale), err)
	}
	supported := render.SupportedTags()
	_, index, _ := language.NewMatcher(supported).Match(tag)
	return supported[index], nil
}

// Run executes the gradereplay command. With -json a failure is also written
// to out as an error report.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	err := run(ctx, cfg, out, errOut)
	if err != nil && cfg.JSONOutput {
		tag, tagErr := resolveTag(cfg.Locale)
		if tagErr != nil {
			tag = language.AmericanEnglish
		}
		if writeErr := writeJSON(out, newFailureReport(err, tag)); writeErr != nil {
			fmt.Fprintf(errOut, "Error: %v\n", writeErr)
		}
	}
	return err
}

func run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	selected, err := resolveMode(cfg)
	if err != nil {
		return err
	}
	legacyMode, ok := machine.ParseLegacyAttemptMode(cfg.LegacyAttempts)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid -legacy-attempts %q (want singleton or merged)", cfg.LegacyAttempts),
			map[string]string{"flag": "legacy-attempts"})
	}
	tag, err := resolveTag(cfg.Locale)
	if err != nil {
		return err
	}
	printer := render.Printer(tag)

	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close grades store: %v\n", closeErr)
		}
	}()

	opts := gradebook.Options{LegacyAttemptMode: legacyMode}
	switch selected {
	case modeTable:
		return runTable(ctx, store, cfg.CourseID, opts, printer, cfg.JSONOutput, out)
	case modeAverage:
		return runAverage(ctx, store, cfg.OpportunityID, opts, printer, cfg.JSONOutput, out)
	default:
		return runPair(ctx, store, cfg.OpportunityID, cfg.ParticipationID, opts, printer, cfg.JSONOutput, out)
	}
}

func openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, invalidFlag("grades db path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, fmt.Sprintf("grades database %s is not readable", path), err)
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "open grades store", err)
	}
	return store, nil
}

type failureReport struct {
	Error failureDetail `json:"error"`
}

type failureDetail struct {
	Code     string            `json:"code"`
	Reason   string            `json:"reason"`
	Domain   string            `json:"domain"`
	Locale   string            `json:"locale,omitempty"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// newFailureReport renders err through its gRPC status so the report carries
// the same code, reason and metadata an RPC caller would see.
func newFailureReport(err error, tag language.Tag) failureReport {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
	}
	st := status.Convert(domainErr.ToGRPCStatus(tag.String(), err.Error()))

	detail := failureDetail{Code: st.Code().String(), Message: err.Error()}
	for _, d := range st.Details() {
		switch d := d.(type) {
		case *errdetails.ErrorInfo:
			detail.Reason = d.GetReason()
			detail.Domain = d.GetDomain()
			detail.Metadata = d.GetMetadata()
		case *errdetails.LocalizedMessage:
			detail.Locale = d.GetLocale()
		}
	}
	return failureReport{Error: detail}
}

type gradeReport struct {
	OpportunityID   string `json:"opportunity_id"`
	ParticipationID string `json:"participation_id"`
	MachineReadable string `json:"machine_readable"`
	HumanReadable   string `json:"human_readable"`
	Applied         int    `json:"applied"`
}

func newGradeReport(opportunityID string, result gradebook.Result, printer *message.Printer) gradeReport {
	return gradeReport{
		OpportunityID:   opportunityID,
		ParticipationID: result.ParticipationID,
		MachineReadable: result.MachineReadable,
		HumanReadable:   render.Localized(printer, result.Machine),
		Applied:         result.Applied,
	}
}

func runPair(ctx context.Context, store *sqlite.Store, opportunityID, participationID string, opts gradebook.Options, printer *message.Printer, jsonOutput bool, out io.Writer) error {
	result, err := gradebook.Replay(ctx, store, opportunityID, participationID, opts)
	if err != nil {
		return err
	}
	report := newGradeReport(strings.TrimSpace(opportunityID), result, printer)
	if jsonOutput {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "Grade for opportunity %s participation %s (%d changes applied)\n",
		report.OpportunityID, report.ParticipationID, report.Applied)
	fmt.Fprintf(out, "machine: %s\n", report.MachineReadable)
	fmt.Fprintf(out, "human: %s\n", report.HumanReadable)
	return nil
}

type tableReport struct {
	CourseID      string      `json:"course_id"`
	Opportunities []string    `json:"opportunities"`
	Rows          []tableLine `json:"rows"`
}

type tableLine struct {
	ParticipationID string        `json:"participation_id"`
	Grades          []gradeReport `json:"grades"`
}

func runTable(ctx context.Context, store *sqlite.Store, courseID string, opts gradebook.Options, printer *message.Printer, jsonOutput bool, out io.Writer) error {
	table, err := gradebook.Table(ctx, store, courseID, opts)
	if err != nil {
		return err
	}

	report := tableReport{CourseID: table.CourseID, Opportunities: make([]string, len(table.Opportunities))}
	for i, opp := range table.Opportunities {
		report.Opportunities[i] = opp.Identifier
	}
	for _, row := range table.Rows {
		line := tableLine{ParticipationID: row.Participation.ID, Grades: make([]gradeReport, len(row.Cells))}
		for i, cell := range row.Cells {
			line.Grades[i] = newGradeReport(table.Opportunities[i].ID, cell, printer)
		}
		report.Rows = append(report.Rows, line)
	}
	if jsonOutput {
		return writeJSON(out, report)
	}

	fmt.Fprintf(out, "Grade table for course %s (%d participations, %d opportunities)\n",
		report.CourseID, len(report.Rows), len(report.Opportunities))
	for _, line := range report.Rows {
		fmt.Fprintf(out, "- %s", line.ParticipationID)
		for i, g := range line.Grades {
			fmt.Fprintf(out, " %s=%s", report.Opportunities[i], g.HumanReadable)
		}
		fmt.Fprintln(out)
	}
	return nil
}

type averageReport struct {
	OpportunityID string   `json:"opportunity_id"`
	Average       *float64 `json:"average"`
	Count         int      `json:"count"`
}

func runAverage(ctx context.Context, store *sqlite.Store, opportunityID string, opts gradebook.Options, printer *message.Printer, jsonOutput bool, out io.Writer) error {
	mean, count, err := gradebook.Average(ctx, store, opportunityID, opts)
	if err != nil {
		return err
	}
	report := averageReport{OpportunityID: strings.TrimSpace(opportunityID), Count: count}
	if count > 0 {
		report.Average = &mean
	}
	if jsonOutput {
		return writeJSON(out, report)
	}
	if report.Average == nil {
		fmt.Fprintf(out, "Average for opportunity %s: no grades\n", report.OpportunityID)
		return nil
	}
	fmt.Fprintf(out, "Average for opportunity %s: %s over %d participations\n",
		report.OpportunityID, printer.Sprintf("%.1f%%", mean), count)
	return nil
}

func writeJSON(out io.Writer, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Fprintln(out, string(encoded))
	return nil
}
