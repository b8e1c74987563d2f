package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/medtick/internal/config"
	"github.com/lazypower/medtick/internal/store"
)

// openStore resolves the configured database path and opens it for a
// direct CLI mutation.
func openStore() (*store.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

var (
	addName        string
	addDosage      string
	addTimes       []string
	addFrequency   string
	addDays        []string
	addNotes       string
	addNoSound     bool
	addNoVibration bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a medication reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := db.Create(store.Reminder{
			MedicationName:   addName,
			Dosage:           addDosage,
			Times:            addTimes,
			Frequency:        addFrequency,
			Days:             addDays,
			Notes:            addNotes,
			SoundEnabled:     !addNoSound,
			VibrationEnabled: !addNoVibration,
			Enabled:          true,
		})
		if err != nil {
			return err
		}

		fmt.Printf("added %s (%s) at %s [%s]\n",
			r.MedicationName, r.Dosage, strings.Join(r.Times, ", "), r.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List medication reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		reminders := db.Load()
		if len(reminders) == 0 {
			fmt.Println("no reminders")
			return nil
		}

		for _, r := range reminders {
			state := ""
			if !r.Enabled {
				state = " (disabled)"
			}
			cadence := r.Frequency
			if r.Frequency == store.FrequencyWeekly {
				cadence = fmt.Sprintf("%s on %s", r.Frequency, strings.Join(r.Days, ", "))
			}
			fmt.Printf("%s  %s (%s)%s\n", r.ID, r.MedicationName, r.Dosage, state)
			fmt.Printf("    %s at %s\n", cadence, strings.Join(r.Times, ", "))
			if r.LastTaken != nil {
				fmt.Printf("    last taken %s\n", r.LastTaken.Format("2006-01-02 15:04"))
			}
		}
		return nil
	},
}

var rmYes bool

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a medication reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := db.Get(args[0])
		if err != nil {
			return err
		}

		if !rmYes {
			fmt.Printf("delete %s (%s)? [y/N] ", r.MedicationName, r.Dosage)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
				fmt.Println("aborted")
				return nil
			}
		}

		if err := db.Delete(r.ID); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", r.MedicationName)
		return nil
	},
}

var takeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Mark a medication as taken now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := db.MarkTaken(args[0], time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("marked %s as taken at %s\n",
			r.MedicationName, r.LastTaken.Format("15:04"))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "medication name (required)")
	addCmd.Flags().StringVar(&addDosage, "dosage", "", "dosage, e.g. 50mg (required)")
	addCmd.Flags().StringSliceVar(&addTimes, "time", []string{"09:00"}, "time of day, HH:MM (repeatable)")
	addCmd.Flags().StringVar(&addFrequency, "frequency", store.FrequencyDaily, "daily, weekly, or as-needed")
	addCmd.Flags().StringSliceVar(&addDays, "day", nil, "weekday for weekly reminders (repeatable)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().BoolVar(&addNoSound, "no-sound", false, "disable the audio cue")
	addCmd.Flags().BoolVar(&addNoVibration, "no-vibration", false, "disable the haptic cue")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("dosage")

	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "skip the confirmation prompt")
}
