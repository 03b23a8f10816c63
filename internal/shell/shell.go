// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/matt-FFFFFF/treebatch/internal/video"
	"github.com/peterh/liner"
)

// Prompt is shown before each command.
const Prompt = "treebatch> "

var (
	// ErrUnknownCommand is returned for a command the shell does not recognise.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command has the wrong arguments.
	ErrUsage = errors.New("usage")
	// ErrCannotClear is returned when clearing would discard running jobs.
	ErrCannotClear = errors.New("cannot clear while processing")
	// ErrCannotProcess is returned when the registry is not in a state that can start a batch.
	ErrCannotProcess = errors.New("cannot process")
	// ErrUnknownSetting is returned by set for an unrecognised key.
	ErrUnknownSetting = errors.New("unknown setting")
)

// Controller is the part of the orchestrator the shell drives.
type Controller interface {
	Register(ctx context.Context, paths ...string) error
	StartProcessing(ctx context.Context) (int, error)
	Clear()
	Poll(ctx context.Context) orchestrator.AppState
	Snapshot() orchestrator.Snapshot
	Settings() orchestrator.Settings
	SetSettings(s orchestrator.Settings) error
	WaitIdle(ctx context.Context) error
}

type command struct {
	usage string
	help  string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":      {"add <path>...", "register config files", (*Shell).add},
		"process":  {"process", "start processing valid configs", (*Shell).process},
		"clear":    {"clear", "remove every config", (*Shell).clear},
		"status":   {"status [text|table|json]", "show item states", (*Shell).status},
		"settings": {"settings", "show settings", (*Shell).settings},
		"set":      {"set <key> <value>", "change a setting", (*Shell).set},
		"wait":     {"wait", "wait for running jobs, then show status", (*Shell).wait},
		"help":     {"help", "show commands", (*Shell).help},
	}
}

// Shell executes commands against a Controller.
type Shell struct {
	ctx    context.Context
	ctrl   Controller
	out    io.Writer
	format report.Format
}

// New creates a Shell writing to out.
func New(ctx context.Context, ctrl Controller, out io.Writer) *Shell {
	return &Shell{
		ctx:    ctx,
		ctrl:   ctrl,
		out:    out,
		format: report.FormatText,
	}
}

// Exec runs one command line. It reports whether the shell should exit.
// Command errors are returned, not printed.
func (s *Shell) Exec(line string) (bool, error) {
	s.ctrl.Poll(s.ctx)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "quit" || name == "exit" {
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %s (try help)", ErrUnknownCommand, name)
	}

	return false, cmd.run(s, args)
}

// Complete returns the command names starting with line.
func Complete(line string) []string {
	var c []string

	for _, name := range append(commandNames(), "quit", "exit") {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			c = append(c, name)
		}
	}

	return c
}

// Run reads commands from the terminal until quit, EOF or an aborted prompt.
func Run(ctx context.Context, ctrl Controller, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close() //nolint:errcheck

	line.SetCtrlCAborts(true)
	line.SetCompleter(Complete)

	sh := New(ctx, ctrl, out)

	fmt.Fprintln(out, "Type 'help' for commands, 'quit' to exit.") //nolint:errcheck

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input, err := line.Prompt(Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		line.AppendHistory(input)

		quit, err := sh.Exec(input)
		if err != nil {
			ctxlog.Debug(ctx, "shell command failed", "input", input, "error", err)
			fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		}

		if quit {
			return nil
		}
	}
}

func (s *Shell) add(args []string) error {
	if len(args) == 0 {
		return usage("add")
	}

	if err := s.ctrl.Register(s.ctx, args...); err != nil {
		return err
	}

	return s.writeStatus(s.format)
}

func (s *Shell) process(args []string) error {
	if len(args) != 0 {
		return usage("process")
	}

	if snap := s.ctrl.Snapshot(); !snap.CanProcess {
		return fmt.Errorf("%w: %s", ErrCannotProcess, snap.State)
	}

	n, err := s.ctrl.StartProcessing(s.ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.out, "Started %d job(s)\n", n)

	return err
}

func (s *Shell) clear(args []string) error {
	if len(args) != 0 {
		return usage("clear")
	}

	if !s.ctrl.Snapshot().CanClear {
		return ErrCannotClear
	}

	s.ctrl.Clear()

	_, err := fmt.Fprintln(s.out, "Cleared")

	return err
}

func (s *Shell) status(args []string) error {
	f := s.format

	switch len(args) {
	case 0:
	case 1:
		var err error
		if f, err = report.ParseFormat(args[0]); err != nil {
			return err
		}
	default:
		return usage("status")
	}

	return s.writeStatus(f)
}

func (s *Shell) wait(args []string) error {
	if len(args) != 0 {
		return usage("wait")
	}

	if err := s.ctrl.WaitIdle(s.ctx); err != nil {
		return err
	}

	s.ctrl.Poll(s.ctx)

	return s.writeStatus(s.format)
}

func (s *Shell) settings(args []string) error {
	if len(args) != 0 {
		return usage("settings")
	}

	st := s.ctrl.Settings()

	encoder := st.EncoderPath
	switch {
	case encoder == "":
		encoder = "(none)"
	case strings.EqualFold(encoder, video.AutoEncoder):
		encoder = video.DefaultEncoder + " (PATH)"
	}

	rows := [][2]string{
		{"forest-green", strconv.FormatBool(st.ForestGreen)},
		{"video", strconv.FormatBool(st.VideoEnabled)},
		{"codec", st.Codec.String()},
		{"encoder", encoder},
		{"video-output-dir", st.VideoOutputDir},
		{"frame-rate", strconv.Itoa(st.FrameRate)},
		{"video-ext", st.VideoExtension},
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(s.out, "%-17s %s\n", r[0], r[1]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Shell) set(args []string) error {
	if len(args) != 2 {
		return usage("set")
	}

	st := s.ctrl.Settings()
	key, value := strings.ToLower(args[0]), args[1]

	var err error

	switch key {
	case "forest-green":
		st.ForestGreen, err = strconv.ParseBool(value)
	case "video":
		st.VideoEnabled, err = strconv.ParseBool(value)
	case "codec":
		st.Codec, err = video.ParseCodec(value)
	case "encoder":
		st.EncoderPath = value
	case "video-output-dir":
		st.VideoOutputDir = value
	case "frame-rate":
		st.FrameRate, err = strconv.Atoi(value)
	case "video-ext":
		st.VideoExtension = strings.TrimPrefix(value, ".")
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return s.ctrl.SetSettings(st)
}

func (s *Shell) help(_ []string) error {
	for _, name := range commandNames() {
		c := commands[name]
		if _, err := fmt.Fprintf(s.out, "  %-26s %s\n", c.usage, c.help); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(s.out, "  %-26s %s\n", "quit", "leave the shell")

	return err
}

func (s *Shell) writeStatus(f report.Format) error {
	return report.Write(s.out, s.ctrl.Snapshot(), f)
}

func usage(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
