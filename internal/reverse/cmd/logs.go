package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
)

func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the ilreverse log file",
		Long: `Show the log file in the data directory. Logs are written there when
ILREVERSE_LOG_TO_FILE=1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")
			lines, _ := cmd.Flags().GetInt("tail")
			path := a.cfg.LogFile()

			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "No log file at %s\n", path)
				return nil
			}
			if follow {
				return followLog(cmd, path)
			}
			return printLogTail(cmd.OutOrStdout(), path, lines)
		},
	}
	cmd.Flags().BoolP("follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().IntP("tail", "t", 100, "Lines to print from the end of the file; 0 prints everything")
	return cmd
}

// printLogTail prints the last n lines of the file at path.
func printLogTail(w io.Writer, path string, n int) error {
	t, err := tail.TailFile(path, tail.Config{MustExist: true, Logger: tail.DiscardingLogger})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer t.Cleanup()

	var last []string
	for line := range t.Lines {
		if line.Err != nil {
			return fmt.Errorf("failed to read log: %w", line.Err)
		}
		last = append(last, line.Text)
		if n > 0 && len(last) > n {
			last = last[1:]
		}
	}
	for _, line := range last {
		fmt.Fprintln(w, line)
	}
	return nil
}

func followLog(cmd *cobra.Command, path string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow log: %w", err)
	}
	defer t.Cleanup()

	w := cmd.OutOrStdout()
	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Fprintln(w, line.Text)
		}
	}
}
