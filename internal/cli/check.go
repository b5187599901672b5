package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"latchkey/internal/tracker"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which items would be flagged missing right now",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	trk := tracker.New(trackerConfig(cfg), st.state, st.events, st.registry)
	missing, err := trk.EvaluateExit(time.Now())
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		fmt.Println("All items accounted for.")
		return nil
	}

	fmt.Println("Missing Items:")
	for _, it := range missing {
		fmt.Printf(" - %s\n", it.Name)
	}
	return nil
}
