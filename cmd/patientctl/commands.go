package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type patientFlags struct {
	name, phone, email, problem, notes string
	severity, status, lastVisit        string
	age                                int
}

func (f *patientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.problem, "problem", "", "presenting eye problem")
	cmd.Flags().StringVar(&f.severity, "severity", string(models.SeverityLow), "Low, Medium, High or Critical")
	cmd.Flags().StringVar(&f.status, "status", string(models.PatientStatusActive), "Active, Treated or Follow-up Required")
	cmd.Flags().StringVar(&f.lastVisit, "last-visit", "", "last visit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("last-visit must be YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

// warnUndeclared notes severity or status values outside the declared sets.
// They are stored as given.
func warnUndeclared(w io.Writer, severity *models.Severity, status *models.PatientStatus) {
	if severity != nil && !severity.IsValid() {
		names := make([]string, len(models.Severities))
		for i, s := range models.Severities {
			names[i] = string(s)
		}
		fmt.Fprintf(w, "warning: severity %q is not one of %s\n", *severity, strings.Join(names, ", "))
	}
	if status != nil && !status.IsValid() {
		names := make([]string, len(models.PatientStatuses))
		for i, s := range models.PatientStatuses {
			names[i] = string(s)
		}
		fmt.Fprintf(w, "warning: status %q is not one of %s\n", *status, strings.Join(names, ", "))
	}
}

func addCmd(a *app) *cobra.Command {
	var f patientFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lastVisit, err := parseDay(f.lastVisit)
			if err != nil {
				return err
			}
			severity := models.Severity(f.severity)
			status := models.PatientStatus(f.status)
			warnUndeclared(cmd.ErrOrStderr(), &severity, &status)
			p, err := a.store.Add(cmd.Context(), models.NewPatient{
				Name:      f.name,
				Age:       f.age,
				Phone:     f.phone,
				Email:     f.email,
				Problem:   f.problem,
				Severity:  severity,
				Status:    status,
				LastVisit: lastVisit,
				Notes:     f.notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added patient %s\n", p.ID)
			return nil
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.store.All(cmd.Context())
			if err != nil {
				return err
			}
			return printPatients(cmd.OutOrStdout(), list, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find patients by name, email or problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPatients(cmd.OutOrStdout(), list, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("patient %s not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
}

func updateCmd(a *app) *cobra.Command {
	var f patientFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a patient; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			warnUndeclared(cmd.ErrOrStderr(), patch.Severity, patch.Status)
			p, err := a.store.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("patient %s not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
	f.bind(cmd)
	return cmd
}

func (f *patientFlags) patch(cmd *cobra.Command) (models.PatientPatch, error) {
	var patch models.PatientPatch
	changed := cmd.Flags().Changed
	if changed("name") {
		patch.Name = &f.name
	}
	if changed("age") {
		patch.Age = &f.age
	}
	if changed("phone") {
		patch.Phone = &f.phone
	}
	if changed("email") {
		patch.Email = &f.email
	}
	if changed("problem") {
		patch.Problem = &f.problem
	}
	if changed("severity") {
		s := models.Severity(f.severity)
		patch.Severity = &s
	}
	if changed("status") {
		s := models.PatientStatus(f.status)
		patch.Status = &s
	}
	if changed("notes") {
		patch.Notes = &f.notes
	}
	if changed("last-visit") {
		lastVisit, err := parseDay(f.lastVisit)
		if err != nil {
			return patch, err
		}
		patch.LastVisit = lastVisit
	}
	return patch, nil
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("patient %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %s\n", args[0])
			return nil
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the register by status and severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total\t%d\n", s.Total)
			fmt.Fprintf(w, "Active\t%d\n", s.Active)
			fmt.Fprintf(w, "Treated\t%d\n", s.Treated)
			fmt.Fprintf(w, "Follow-up\t%d\n", s.FollowUp)
			fmt.Fprintf(w, "Critical\t%d\n", s.Critical)
			return w.Flush()
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load demo patients into an empty register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Seed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Register already has patients; nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d patients\n", n)
			return nil
		},
	}
}

func printPatients(out io.Writer, list []models.Patient, asJSON bool) error {
	if asJSON {
		return writeJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No patients found")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGE\tPROBLEM\tSEVERITY\tSTATUS\tADDED")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Age, p.Problem, p.Severity, p.Status, p.DateAdded.Format(dateLayout))
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
