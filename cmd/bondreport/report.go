package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"bondscope/internal/exporter"
	"bondscope/internal/services"
	api "bondscope/pkg/contracts/api/v1"
	"bondscope/pkg/contracts/domain"
)

const (
	colorAccent lipgloss.Color = "#f5c2e7"
	colorBorder lipgloss.Color = "#585b70"
	colorMuted  lipgloss.Color = "#a6adc8"
	colorWarn   lipgloss.Color = "#f9e2af"
)

type report struct {
	w      io.Writer
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
	border lipgloss.Style
}

func newReport(w io.Writer, plain bool) *report {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return &report{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		muted:  r.NewStyle().Foreground(colorMuted),
		warn:   r.NewStyle().Foreground(colorWarn),
		border: r.NewStyle().Foreground(colorBorder),
	}
}

func (rep *report) section(title string) {
	fmt.Fprintln(rep.w, rep.title.Render(title))
}

func (rep *report) note(text string) {
	fmt.Fprintln(rep.w, rep.muted.Render(text))
}

func (rep *report) table(headers []string, rows [][]string, numeric ...int) {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(rep.border).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := rep.cell
			if row == table.HeaderRow {
				s = rep.header
			}
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(rep.w, t.Render())
}

func (rep *report) keyValues(pairs [][2]string) {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	rep.table([]string{"Metric", "Value"}, rows, 1)
}

func (rep *report) overview(o *api.Overview) {
	g := o.Global
	rep.section("Overview")
	rep.keyValues([][2]string{
		{"Donations", exporter.FormatCount(g.NumDonations)},
		{"Donors", exporter.FormatCount(g.NumDonors)},
		{"Total donated", exporter.FormatINR(g.TotalDonation)},
		{"Mean donation", formatMoney(g.Mean)},
		{"Median donation", formatMoney(g.Median)},
		{"Most common denomination", fmt.Sprintf("%s (%d times)", exporter.FormatINR(g.Mode), g.ModeFrequency)},
		{"Years", yearRange(g.YearRange)},
	})

	if p := o.Parties; p != nil {
		rep.keyValues([][2]string{
			{"Encashments", exporter.FormatCount(p.NumEncashments)},
			{"Parties", exporter.FormatCount(p.NumParties)},
			{"Total encashed", exporter.FormatINR(p.TotalEncashed)},
			{"Years", yearRange(p.YearRange)},
		})
	}

	line := fmt.Sprintf("Purchased %s, redeemed %s, difference %s (%s)",
		o.PurchasedINR, o.RedeemedINR, o.DifferenceINR, o.DifferenceWords)
	if o.Discrepancy.Difference != 0 {
		fmt.Fprintln(rep.w, rep.warn.Render(line))
	} else {
		rep.note(line)
	}
	rep.note(fmt.Sprintf("Dataset %s: %d purchases, %d redemptions",
		o.Dataset.ID, o.Dataset.Purchases.Records, o.Dataset.Redemptions.Records))
}

func (rep *report) league(rows []domain.LeagueRow) {
	rep.section("Donor league")
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Tier.String(),
			r.Bananas,
			exporter.FormatCount(r.DonorCount),
			exporter.FormatINR(r.TotalAmount),
			percent(r.CountPercentage),
			percent(r.AmountPercentage),
		})
	}
	rep.table([]string{"Tier", "", "Donors", "Total", "Donors %", "Amount %"}, out, 2, 3, 4, 5)
}

func (rep *report) donors(page *api.DonorPage) {
	rep.section(fmt.Sprintf("Top %d of %d donors", len(page.Donors), page.Total))
	out := make([][]string, 0, len(page.Donors))
	for i, d := range page.Donors {
		out = append(out, []string{
			strconv.Itoa(page.Offset + i + 1),
			d.DonorName,
			d.Tier.String(),
			exporter.FormatINR(d.TotalAmount),
		})
	}
	rep.table([]string{"#", "Donor", "Tier", "Total"}, out, 0, 3)
}

func (rep *report) parties(rows []domain.PartyRedemption) {
	rep.section("Redemptions by party")
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.PoliticalParty,
			exporter.FormatCount(r.Count),
			exporter.FormatINR(r.TotalAmount),
			percent(r.PercentageShare),
		})
	}
	rep.table([]string{"Party", "Encashments", "Total", "Share"}, out, 1, 2, 3)
}

func (rep *report) donor(d *api.DonorDetail) {
	s := d.Stats
	rep.section(fmt.Sprintf("%s %s", s.DonorName, s.Tier.Bananas()))
	rep.keyValues([][2]string{
		{"Tier", s.Tier.String()},
		{"Donations", exporter.FormatCount(s.NumDonations)},
		{"Total", fmt.Sprintf("%s (%s)", d.TotalINR, d.TotalWords)},
		{"In words", d.TotalSpelled},
		{"Mean donation", formatMoney(s.Mean)},
		{"Median donation", formatMoney(s.Median)},
		{"Most common denomination", fmt.Sprintf("%s (%d times)", exporter.FormatINR(s.Mode), s.ModeFrequency)},
		{"Years", yearRange(s.YearRange)},
	})

	c := d.Correlation
	if c.WindowStart == "" {
		rep.note("No dated purchases; correlation window unavailable.")
	} else {
		rep.note(fmt.Sprintf("Redemptions between %s and %s", c.WindowStart, c.WindowEnd))
		parties := make([]string, 0, len(c.Parties))
		for p := range c.Parties {
			parties = append(parties, p)
		}
		sort.Slice(parties, func(i, j int) bool {
			if c.Parties[parties[i]] != c.Parties[parties[j]] {
				return c.Parties[parties[i]] > c.Parties[parties[j]]
			}
			return parties[i] < parties[j]
		})
		out := make([][]string, 0, len(parties))
		for _, p := range parties {
			out = append(out, []string{p, strconv.Itoa(c.Parties[p])})
		}
		rep.table([]string{"Party", "Redemptions in window"}, out, 1)
		rep.note("Time-based association only; it does not show which bonds a party redeemed.")
	}
	rep.note("Search: " + d.SearchURL)
}

func (rep *report) missingDonor(err *services.DonorNotFoundError) {
	fmt.Fprintln(rep.w, rep.warn.Render(fmt.Sprintf("Donor %q not found.", err.Name)))
	if len(err.Suggestions) > 0 {
		rep.note("Did you mean: " + strings.Join(err.Suggestions, ", "))
	}
}

func formatMoney(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func yearRange(y domain.YearRange) string {
	if y.StartYear == 0 {
		return "n/a"
	}
	if y.StartYear == y.EndYear {
		return strconv.Itoa(y.StartYear)
	}
	return fmt.Sprintf("%d-%d", y.StartYear, y.EndYear)
}
