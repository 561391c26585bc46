// Package cli is the command-line front end of the tracker.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/application/command"
	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/calendar"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/export"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/sqlite"
)

// ErrHelp is returned after usage has been printed.
var ErrHelp = errors.New("help provided")

var errNoBackups = errors.New("backups need the sqlite storage (unset STORAGE_MEMORY)")

// BackupStore lists and fetches previous slot values. The sqlite storage
// implements it.
type BackupStore interface {
	Backups(ctx context.Context, slot string) ([]sqlite.Backup, error)
	Backup(ctx context.Context, id int64) (sqlite.Backup, error)
}

// Dependencies wires the command line to the application layer.
type Dependencies struct {
	Store         *tracker.Store
	GetDay        *query.GetDayHandler
	GetStatistics *query.GetStatisticsHandler
	Reports       *query.ComposeReportHandler
	ShareReport   *command.ShareReportHandler
	ImportData    *command.ImportDataHandler

	// Clipboard and Chat back report -copy and report -send. Chat is nil
	// when no bot token is configured.
	Clipboard command.Sharer
	Chat      command.Sharer

	// Backups is nil for in-memory storage.
	Backups BackupStore

	// Confirmer and Prompter default to a Terminal on stdin.
	Confirmer tracker.Confirmer
	Prompter  tracker.Prompter

	// Serve runs the HTTP API until ctx is done.
	Serve func(ctx context.Context) error

	Today time.Time
	Out   io.Writer
	Err   io.Writer
}

// CommandLine dispatches subcommands.
type CommandLine struct {
	deps Dependencies
}

// New creates a CommandLine.
func New(deps Dependencies) *CommandLine {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	if deps.Today.IsZero() {
		deps.Today = time.Now()
	}
	if deps.Confirmer == nil || deps.Prompter == nil {
		t := NewTerminal(os.Stdin, deps.Out)
		if deps.Confirmer == nil {
			deps.Confirmer = t
		}
		if deps.Prompter == nil {
			deps.Prompter = t
		}
	}
	return &CommandLine{deps: deps}
}

func (cli *CommandLine) printUsage() {
	fmt.Fprintln(cli.deps.Err, `Usage:
  student list                    - list the roster
  student add NAME                - add a student
  student rename ID [NAME]        - rename a student (prompts when NAME is omitted)
  student remove ID [-yes]        - remove a student and all their records
  day [-date D] [-prev] [-next]   - show the attendance table of a day
  mark [-date D] ID FLAG [-off]   - set a flag (memorized, reviewed, absent, excused)
  stats                           - show per-student statistics
  report [-date D] [-copy] [-send]- print the daily report, optionally share it
  welcome                         - print the welcome banner
  export -out FILE                - write statistics and records to an xlsx file
  import -dump FILE | -students FILE -records FILE
                                  - replace the data with an exported dump
  backups [-slot S]               - list kept previous values of a slot
  restore ID [-yes]               - put a kept value back into its slot
  serve                           - run the HTTP API`)
}

// Run executes the subcommand named by args[1].
func (cli *CommandLine) Run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return ErrHelp
	}

	rest := args[2:]
	switch args[1] {
	case "student":
		return cli.student(ctx, rest)
	case "day":
		return cli.day(ctx, rest)
	case "mark":
		return cli.mark(ctx, rest)
	case "stats":
		renderStats(cli.deps.Out, cli.deps.GetStatistics.Handle(ctx))
		return nil
	case "report":
		return cli.report(ctx, rest)
	case "welcome":
		w := cli.deps.Reports.Welcome(cli.deps.Today)
		fmt.Fprintln(cli.deps.Out, w.Greeting)
		fmt.Fprintln(cli.deps.Out, w.DateLine)
		return nil
	case "export":
		return cli.export(ctx, rest)
	case "import":
		return cli.importData(ctx, rest)
	case "backups":
		return cli.backups(ctx, rest)
	case "restore":
		return cli.restore(ctx, rest)
	case "serve":
		if cli.deps.Serve == nil {
			return errors.New("serve is not available")
		}
		return cli.deps.Serve(ctx)
	case "help", "-h", "--help":
		cli.printUsage()
		return ErrHelp
	default:
		cli.printUsage()
		return ErrHelp
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBCOMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (cli *CommandLine) student(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return ErrHelp
	}
	out := cli.deps.Out
	store := cli.deps.Store

	switch args[0] {
	case "list":
		renderStudents(out, store.Students())
		return nil

	case "add":
		s, ok, err := store.AddStudent(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "nothing added")
			return nil
		}
		fmt.Fprintf(out, "added %d %s\n", s.ID, s.Name)
		return nil

	case "rename":
		if len(args) < 2 {
			cli.printUsage()
			return ErrHelp
		}
		id, _ := student.ParseID(args[1])
		var ok bool
		var err error
		if len(args) > 2 {
			ok, err = store.RenameStudent(ctx, id, strings.Join(args[2:], " "))
		} else {
			ok, err = store.PromptRename(ctx, id, cli.deps.Prompter)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, changedWord(ok, "renamed"))
		return nil

	case "remove":
		fs := cli.flagSet("student remove")
		yes := fs.Bool("yes", false, "Skip the confirmation.")
		pos, err := parseInterspersed(fs, args[1:])
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			fs.Usage()
			return ErrHelp
		}
		id, _ := student.ParseID(pos[0])
		confirmer := cli.deps.Confirmer
		if *yes {
			confirmer = tracker.AlwaysConfirm
		}
		ok, err := store.RemoveStudent(ctx, id, confirmer)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, changedWord(ok, "removed"))
		return nil
	}

	cli.printUsage()
	return ErrHelp
}

func (cli *CommandLine) day(ctx context.Context, args []string) error {
	fs := cli.flagSet("day")
	date := fs.String("date", "", "Date to show, YYYY-MM-DD (default: today).")
	prev := fs.Bool("prev", false, "Step one day back.")
	next := fs.Bool("next", false, "Step one day forward.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nav := cli.viewNavigator(*date)
	if *prev {
		nav.Prev()
	}
	if *next {
		nav.Next()
	}
	renderDay(cli.deps.Out, cli.deps.GetDay.Handle(ctx, nav))
	return nil
}

func (cli *CommandLine) mark(ctx context.Context, args []string) error {
	fs := cli.flagSet("mark")
	date := fs.String("date", "", "Date, YYYY-MM-DD (default: today).")
	off := fs.Bool("off", false, "Clear the flag instead of setting it.")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		fs.Usage()
		return ErrHelp
	}

	nav, ok := cli.navigator(*date)
	if !ok {
		return fmt.Errorf("%w: %q", shared.ErrInvalidDate, *date)
	}
	id, ok := student.ParseID(pos[0])
	if _, found := cli.deps.Store.Student(id); !ok || !found {
		return fmt.Errorf("%w: %q", shared.ErrStudentNotFound, pos[0])
	}
	f, ok := attendance.ParseFlag(pos[1])
	if !ok {
		return fmt.Errorf("%w: %q", shared.ErrUnknownFlag, pos[1])
	}

	status, changed, err := cli.deps.Store.SetFlag(ctx, nav.Key(), id, f, !*off)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.deps.Out, "%s %s: ", nav.Key(), changedWord(changed, "updated"))
	renderStatus(cli.deps.Out, status)
	return nil
}

func (cli *CommandLine) report(ctx context.Context, args []string) error {
	fs := cli.flagSet("report")
	date := fs.String("date", "", "Date, YYYY-MM-DD (default: today).")
	copyIt := fs.Bool("copy", false, "Copy the report to the clipboard.")
	send := fs.Bool("send", false, "Send the report to the Telegram chat.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var sharers []command.Sharer
	if *copyIt {
		if cli.deps.Clipboard == nil {
			return errors.New("clipboard is not available")
		}
		sharers = append(sharers, cli.deps.Clipboard)
	}
	if *send {
		if cli.deps.Chat == nil {
			return errors.New("telegram is not configured (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)")
		}
		sharers = append(sharers, cli.deps.Chat)
	}

	nav := cli.viewNavigator(*date)
	res, err := cli.deps.ShareReport.Handle(ctx, command.ShareReportCommand{Date: nav.Current(), Sharers: sharers})
	if res != nil {
		fmt.Fprintln(cli.deps.Out, res.Text)
		for _, name := range res.Delivered {
			fmt.Fprintf(cli.deps.Err, "shared via %s\n", name)
		}
	}
	return err
}

func (cli *CommandLine) export(ctx context.Context, args []string) error {
	fs := cli.flagSet("export")
	out := fs.String("out", "", "Output xlsx file.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return ErrHelp
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	roster, ledger := cli.deps.Store.Snapshot()
	if err := export.Workbook(f, cli.deps.GetStatistics.Handle(ctx), roster, ledger); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.deps.Out, "wrote %s\n", *out)
	return nil
}

func (cli *CommandLine) importData(ctx context.Context, args []string) error {
	fs := cli.flagSet("import")
	dump := fs.String("dump", "", "JSON object keyed by slot name (browser localStorage dump).")
	students := fs.String("students", "", "File with the students slot value.")
	records := fs.String("records", "", "File with the dailyRecords slot value.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cmd command.ImportDataCommand
	var err error
	if cmd.Dump, err = readOptional(*dump); err != nil {
		return err
	}
	if cmd.Students, err = readOptional(*students); err != nil {
		return err
	}
	if cmd.Records, err = readOptional(*records); err != nil {
		return err
	}
	if cmd.Dump == nil && cmd.Students == nil && cmd.Records == nil {
		fs.Usage()
		return ErrHelp
	}

	if err := cli.deps.ImportData.Handle(ctx, cmd); err != nil {
		return err
	}
	fmt.Fprintf(cli.deps.Out, "imported %d students\n", len(cli.deps.Store.Students()))
	return nil
}

func (cli *CommandLine) backups(ctx context.Context, args []string) error {
	fs := cli.flagSet("backups")
	slot := fs.String("slot", tracker.SlotStudents, "Slot name (students or dailyRecords).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cli.deps.Backups == nil {
		return errNoBackups
	}
	list, err := cli.deps.Backups.Backups(ctx, *slot)
	if err != nil {
		return err
	}
	renderBackups(cli.deps.Out, list)
	return nil
}

func (cli *CommandLine) restore(ctx context.Context, args []string) error {
	fs := cli.flagSet("restore")
	yes := fs.Bool("yes", false, "Skip the confirmation.")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fs.Usage()
		return ErrHelp
	}
	if cli.deps.Backups == nil {
		return errNoBackups
	}
	id, err := strconv.ParseInt(pos[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: backup id %q", shared.ErrInvalidID, pos[0])
	}

	b, err := cli.deps.Backups.Backup(ctx, id)
	if err != nil {
		return err
	}
	if !*yes {
		question := fmt.Sprintf("restore %s from %s?", b.Slot, b.ReplacedAt)
		ok, err := cli.deps.Confirmer.Confirm(ctx, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cli.deps.Out, changedWord(false, "restored"))
			return nil
		}
	}
	if err := cli.deps.Store.RestoreSlot(ctx, b.Slot, b.Value); err != nil {
		return err
	}
	fmt.Fprintf(cli.deps.Out, "restored %s from %s\n", b.Slot, b.ReplacedAt)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (cli *CommandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.deps.Err)
	return fs
}

// navigator starts on today and jumps to value. ok is false when value is
// set but does not parse; the navigator then stays on today.
func (cli *CommandLine) navigator(value string) (*calendar.Navigator, bool) {
	nav := calendar.NewNavigator(cli.deps.Today)
	if value == "" {
		return nav, true
	}
	return nav, nav.SetDate(value)
}

// viewNavigator is navigator for read-only views, which fall back to today
// with a warning.
func (cli *CommandLine) viewNavigator(value string) *calendar.Navigator {
	nav, ok := cli.navigator(value)
	if !ok {
		fmt.Fprintf(cli.deps.Err, "warning: invalid date %q, showing %s\n", value, nav.Key())
	}
	return nav
}

// parseInterspersed lets flags follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func changedWord(changed bool, word string) string {
	if changed {
		return word
	}
	return "unchanged"
}
