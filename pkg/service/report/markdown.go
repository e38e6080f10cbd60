package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/types"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/service/render"
)

// writeMarkdown composes the narrative document. Everything except the
// generated-at line is a pure function of the rate set and image list.
func writeMarkdown(set *model.RateSet, images []string, path string, now time.Time) error {
	national, city, other := classifyImages(images)

	var b strings.Builder
	b.WriteString("# Influenza-like Illness Incidence Report\n\n")
	fmt.Fprintf(&b, "Generated at: %s\n\n", now.Format(time.RFC3339))

	if len(set.National) > 0 {
		first, last := yearSpan(set.National)
		fmt.Fprintf(&b, "National tables cover %d to %d. City figures use the %d reference year.\n\n",
			first.Int(), last.Int(), set.ReferenceYear.Int())

		b.WriteString("## National incidence\n\n")
		for _, age := range types.AgeGroups() {
			peak, minimum, ok := bandExtremes(set.National, age)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- **%s**: peak %s in %d, minimum %s in %d\n",
				age.String(),
				pct(peak.Percentage), peak.Year.Int(),
				pct(minimum.Percentage), minimum.Year.Int())
		}
		b.WriteString("\n")
		embedImages(&b, national)
	}

	if len(set.Overall) > 0 {
		fmt.Fprintf(&b, "## City incidence (%d)\n\n", set.ReferenceYear.Int())
		highest, lowest := overallExtremes(set.Overall)
		fmt.Fprintf(&b, "**%s** recorded the highest overall incidence (%s) and **%s** the lowest (%s).\n\n",
			highest.City, pct(highest.Percentage),
			lowest.City, pct(lowest.Percentage))
		embedImages(&b, city)
	}

	embedImages(&b, other)

	fmt.Fprintf(&b, "## Rate tables\n\nThe exact tables are written to [%s](%s).\n",
		WorkbookFile, WorkbookFile)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write markdown", goerr.V("path", path))
	}
	return nil
}

func pct(ratio float64) string {
	return fmt.Sprintf("%.3f%%", ratio*100)
}

func embedImages(b *strings.Builder, images []string) {
	for _, img := range images {
		fmt.Fprintf(b, "![%s](%s)\n\n", caption(img), filepath.Base(img))
	}
}

// classifyImages splits the plot files into the national and city sections
// of the narrative. Unrecognized files are appended after both.
func classifyImages(images []string) (national, city, other []string) {
	for _, img := range images {
		switch filepath.Base(img) {
		case render.DensityFile, render.BoxplotFile, render.TrendFile:
			national = append(national, img)
		case render.ViolinFile, render.ChoroplethFile:
			city = append(city, img)
		default:
			other = append(other, img)
		}
	}
	return national, city, other
}

func caption(path string) string {
	switch filepath.Base(path) {
	case render.DensityFile:
		return "Incidence density by age group"
	case render.BoxplotFile:
		return "Incidence distribution by age group"
	case render.TrendFile:
		return "Incidence trend by year"
	case render.ViolinFile:
		return "City incidence by age group"
	case render.ChoroplethFile:
		return "City incidence map"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func yearSpan(national []model.YearRate) (types.Year, types.Year) {
	first, last := national[0].Year, national[0].Year
	for _, r := range national[1:] {
		if r.Year < first {
			first = r.Year
		}
		if r.Year > last {
			last = r.Year
		}
	}
	return first, last
}

// bandExtremes returns the peak and minimum year rows of one age group.
// Ties keep the earliest year.
func bandExtremes(national []model.YearRate, age types.AgeGroup) (peak, minimum model.YearRate, ok bool) {
	for _, r := range national {
		if r.Age != age {
			continue
		}
		if !ok {
			peak, minimum, ok = r, r, true
			continue
		}
		if r.Percentage > peak.Percentage {
			peak = r
		}
		if r.Percentage < minimum.Percentage {
			minimum = r
		}
	}
	return peak, minimum, ok
}

// overallExtremes returns the highest and lowest overall city rows. Ties
// keep the first city in table order.
func overallExtremes(overall []model.CityOverall) (highest, lowest model.CityOverall) {
	highest, lowest = overall[0], overall[0]
	for _, r := range overall[1:] {
		if r.Percentage > highest.Percentage {
			highest = r
		}
		if r.Percentage < lowest.Percentage {
			lowest = r
		}
	}
	return highest, lowest
}
