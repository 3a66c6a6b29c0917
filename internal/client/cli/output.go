package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/bioguard/internal/client/models"
)

const timeLayout = "2006-01-02 15:04:05"

func ptrs[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func localTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func printUsers(w io.Writer, users ...*models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role, localTime(u.CreatedAt))
	}
	tw.Flush()
}

func printPeople(w io.Writer, people []models.Person) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLIST\tUPDATED")
	for _, p := range people {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.ListType, localTime(p.UpdatedAt))
	}
	tw.Flush()
}

func printLogs(w io.Writer, logs []models.AccessLog) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPERSON\tACTION\tLOG")
	for _, l := range logs {
		person := l.PersonName
		if person == "" {
			person = l.PersonID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", localTime(l.Timestamp), person, l.Action, l.ID)
	}
	tw.Flush()
}
