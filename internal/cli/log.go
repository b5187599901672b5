package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logDays int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent activity log entries",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&logDays, "days", 14, "how many days back to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if st.db == nil {
		return fmt.Errorf("the activity log requires the sqlite backend")
	}

	events, err := st.db.RecentEvents(time.Duration(logDays) * 24 * time.Hour)
	if err != nil {
		return err
	}

	for _, e := range events {
		// 2026-02-03 22:45:03 : Warning : exit check: missing Keys
		fmt.Printf("%s : %s : %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Message)
	}
	return nil
}
