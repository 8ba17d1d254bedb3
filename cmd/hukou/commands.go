package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qixiang/hukou/internal/format"
	"github.com/qixiang/hukou/internal/model"
	"github.com/qixiang/hukou/internal/snapshot"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all households",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			households, err := mgr.List()
			if err != nil {
				return err
			}
			printHouseholds(households, nil)
			if mgr.Stale() {
				fmt.Fprintln(os.Stderr, "warning: listing may be stale, the last refresh failed")
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <position>",
		Short: "Show one household by its position in the listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %q", args[0])
			}

			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			h, err := mgr.At(pos)
			if err != nil {
				return err
			}
			if h == nil {
				return fmt.Errorf("no household at position %d", pos)
			}

			fmt.Printf("户主: %s\n", h.HeadName)
			fmt.Printf("身份证号: %s\n", h.IDNumber)
			fmt.Printf("地址: %s\n", h.Address)
			fmt.Printf("电话: %s\n", h.Phone)
			fmt.Printf("户口类型: %s\n", h.Type)
			fmt.Printf("登记日期: %s\n", h.RegistrationDate.Format("2006-01-02 15:04:05"))
			fmt.Printf("成员 (%d):\n", len(h.Members))
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "  姓名\t关系\t性别\t出生日期\t学历\t职业")
			for _, m := range h.Members {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
					m.Name, m.Relationship, m.Gender,
					m.BirthDate.Format("2006-01-02"), m.Education, m.Occupation)
			}
			return w.Flush()
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search households by head name, ID number, address or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			positions, err := mgr.Search(args[0])
			if err != nil {
				return err
			}
			if positions == nil {
				positions = []int{}
			}

			households, err := mgr.List()
			if err != nil {
				return err
			}
			printHouseholds(households, positions)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			stats, err := mgr.Statistics()
			if err != nil {
				return err
			}
			fmt.Printf("总户数: %d\n", stats.TotalHouseholds)
			fmt.Printf("城镇户口: %d\n", stats.UrbanHouseholds)
			fmt.Printf("农村户口: %d\n", stats.RuralHouseholds)
			fmt.Printf("总人数: %d\n", stats.TotalMembers)
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a household from a YAML form file",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(file)
			if err != nil {
				return err
			}

			h, err := form.ToHousehold(uuid.Nil)
			if err != nil {
				return err
			}

			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			if err := mgr.Add(h); err != nil {
				return err
			}
			fmt.Printf("added household %s (%s)\n", h.HeadName, h.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form file (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newEditCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <position>",
		Short: "Replace the household at a position with a YAML form file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %q", args[0])
			}

			form, err := loadForm(file)
			if err != nil {
				return err
			}

			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			current, err := mgr.At(pos)
			if err != nil {
				return err
			}
			if current == nil {
				return fmt.Errorf("no household at position %d", pos)
			}

			// Carry identity and registration date through the edit by
			// replaying the form on top of the stored record's form.
			base := model.FormFromHousehold(current)
			base.HeadName = form.HeadName
			base.IDNumber = form.IDNumber
			base.Address = form.Address
			base.Phone = form.Phone
			base.Type = form.Type
			base.Members = form.Members

			h, err := base.ToHousehold(current.ID)
			if err != nil {
				return err
			}

			if err := mgr.Update(h); err != nil {
				return err
			}
			fmt.Printf("updated household %s (%s)\n", h.HeadName, h.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form file (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove the household at a position, members included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %q", args[0])
			}

			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			h, err := mgr.At(pos)
			if err != nil {
				return err
			}
			if h == nil {
				return fmt.Errorf("no household at position %d", pos)
			}

			if err := mgr.Remove(h.ID); err != nil {
				return err
			}
			fmt.Printf("removed household %s (%s)\n", h.HeadName, h.ID)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample data into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			empty, err := mgr.Store().IsEmpty()
			if err != nil {
				return err
			}
			if !empty {
				fmt.Println("database is not empty; nothing seeded")
				return nil
			}
			return mgr.SeedSampleData()
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		dir      string
		follow   bool
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export households, members and statistics to CSV/text files",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cfg, err := setup()
			if err != nil {
				return err
			}
			defer mgr.Store().Close()

			if dir == "" {
				dir = cfg.Export.Dir
			}
			runner := snapshot.New(mgr, cfg.Database.Path, dir)

			switch {
			case follow && schedule != "":
				return fmt.Errorf("--follow and --schedule are mutually exclusive")
			case follow:
				return runner.Follow(signalContext())
			case schedule != "":
				return runner.Schedule(signalContext(), schedule)
			default:
				return runner.Export()
			}
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "Output directory (default from config, else current directory)")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep running and re-export when the database file changes")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression for periodic re-export (e.g. \"0 2 * * *\")")
	return cmd
}

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	dbCmd.AddCommand(
		&cobra.Command{
			Use:   "optimize",
			Short: "Refresh SQLite planner statistics",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, _, err := setup()
				if err != nil {
					return err
				}
				defer mgr.Store().Close()
				return mgr.Store().Optimize()
			},
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Rebuild the database file to reclaim space",
			RunE: func(cmd *cobra.Command, args []string) error {
				mgr, _, err := setup()
				if err != nil {
					return err
				}
				defer mgr.Store().Close()
				return mgr.Store().Vacuum()
			},
		},
	)
	return dbCmd
}

func loadForm(path string) (*model.HouseholdForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}

	var form model.HouseholdForm
	if err := yaml.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return &form, nil
}

// printHouseholds renders the listing, masking ID numbers and phones.
// When positions is non-nil only those positions are printed.
func printHouseholds(households []model.Household, positions []int) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\t户主\t身份证号\t电话\t地址\t户口类型\t成员数")

	row := func(pos int) {
		h := &households[pos]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			pos, h.HeadName,
			format.MaskIDNumber(h.IDNumber),
			format.MaskPhone(h.Phone),
			format.TruncateAddress(h.Address, 20),
			h.Type, len(h.Members))
	}

	if positions == nil {
		for i := range households {
			row(i)
		}
	} else {
		for _, pos := range positions {
			if pos >= 0 && pos < len(households) {
				row(pos)
			}
		}
	}
	w.Flush()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
