// Package export renders a persisted assessment as an XLSX workbook.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/strategy-cli/internal/model"
	"github.com/sells-group/strategy-cli/internal/provenance"
)

// Sheet names, in workbook order.
const (
	SheetSPAN    = "SPAN"
	SheetTasks   = "Tasks"
	SheetRoadmap = "Roadmap"
	SheetSources = "Sources"
)

const dateLayout = "2006-01-02"

// Workbook builds the four-sheet workbook for a. The ledger supplies the
// Sources sheet and may be nil.
func Workbook(a *model.Assessment, l *provenance.Ledger) (*xlsx.File, error) {
	if a == nil || a.Bundle == nil {
		return nil, eris.New("export: assessment has no bundle")
	}

	f := xlsx.NewFile()
	header := xlsx.NewStyle()
	header.Font.Bold = true
	header.ApplyFont = true

	builders := []struct {
		name  string
		build func(*xlsx.Sheet, *xlsx.Style)
	}{
		{SheetSPAN, func(s *xlsx.Sheet, h *xlsx.Style) { spanSheet(s, h, a.Bundle.SPAN) }},
		{SheetTasks, func(s *xlsx.Sheet, h *xlsx.Style) { taskSheet(s, h, a.Decisions) }},
		{SheetRoadmap, func(s *xlsx.Sheet, h *xlsx.Style) { roadmapSheet(s, h, a.Decisions) }},
		{SheetSources, func(s *xlsx.Sheet, h *xlsx.Style) { sourceSheet(s, h, l) }},
	}
	for _, b := range builders {
		sheet, err := f.AddSheet(b.name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", b.name)
		}
		b.build(sheet, header)
	}
	return f, nil
}

// WriteFile saves the workbook for a to path.
func WriteFile(path string, a *model.Assessment, l *provenance.Ledger) error {
	f, err := Workbook(a, l)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// Write streams the workbook for a to w.
func Write(w io.Writer, a *model.Assessment, l *provenance.Ledger) error {
	f, err := Workbook(a, l)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

func headerRow(s *xlsx.Sheet, style *xlsx.Style, cols ...string) {
	row := s.AddRow()
	for _, c := range cols {
		cell := row.AddCell()
		cell.SetString(c)
		cell.SetStyle(style)
	}
}

func spanSheet(s *xlsx.Sheet, h *xlsx.Style, r *model.SPANResult) {
	headerRow(s, h, "Opportunity", "Origin", "Market Attractiveness", "Competitive Position", "Quadrant", "Priority", "Recommended Strategy", "Bubble Size")
	if r == nil {
		return
	}

	priority := make(map[string]model.PriorityTier, len(r.Opportunities))
	for _, o := range r.Opportunities {
		priority[o.Name] = o.Priority
	}
	for _, p := range r.Positions {
		row := s.AddRow()
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Origin)
		row.AddCell().SetFloat(p.MarketAttractiveness)
		row.AddCell().SetFloat(p.CompetitivePosition)
		row.AddCell().SetString(string(p.Quadrant))
		row.AddCell().SetString(string(priority[p.Name]))
		row.AddCell().SetString(p.RecommendedStrategy)
		row.AddCell().SetFloat(p.BubbleSize)
	}
}

func taskSheet(s *xlsx.Sheet, h *xlsx.Style, d *model.ThreeDecisions) {
	headerRow(s, h, "#", "Priority", "Domain", "Task", "Description", "KPI")
	if d == nil {
		return
	}
	for i, t := range d.KeyTasks.Tasks {
		row := s.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(string(t.Priority))
		row.AddCell().SetString(t.Domain)
		row.AddCell().SetString(t.Name)
		row.AddCell().SetString(t.Description)
		row.AddCell().SetString(t.KPI)
	}
}

// roadmapSheet writes one row per milestone goal.
func roadmapSheet(s *xlsx.Sheet, h *xlsx.Style, d *model.ThreeDecisions) {
	headerRow(s, h, "Quarter", "Theme", "Goal")
	if d == nil {
		return
	}
	for _, m := range d.Execution.Milestones {
		goals := m.Goals
		if len(goals) == 0 {
			goals = []string{""}
		}
		for _, g := range goals {
			row := s.AddRow()
			row.AddCell().SetString(m.Quarter)
			row.AddCell().SetString(m.Theme)
			row.AddCell().SetString(g)
		}
	}
}

func sourceSheet(s *xlsx.Sheet, h *xlsx.Style, l *provenance.Ledger) {
	headerRow(s, h, "ID", "Kind", "Citation", "Publisher", "Published", "Confidence", "Extraction Confidence")
	if l == nil {
		return
	}
	for _, src := range l.Sources() {
		row := s.AddRow()
		row.AddCell().SetString(src.ID)
		row.AddCell().SetString(string(src.Kind))
		row.AddCell().SetString(strings.TrimSpace(src.Citation()))
		row.AddCell().SetString(src.Publisher)
		published := ""
		if src.PublishedAt != nil {
			published = src.PublishedAt.Format(dateLayout)
		}
		row.AddCell().SetString(published)
		row.AddCell().SetString(string(src.Confidence))
		row.AddCell().SetFloat(src.ExtractionConfidence)
	}
}
