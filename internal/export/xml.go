// Package export renders plans into portable documents.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/money-marathon/internal/models"
)

// PlanXML builds an XML document describing a plan, its day entries and
// statistics. Amounts are written with two decimals.
func PlanXML(d *models.PlanDetails) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("plan")
	root.CreateAttr("id", d.Plan.ID)
	root.CreateAttr("status", string(d.Plan.Status))
	root.CreateElement("name").SetText(d.Plan.Name)
	root.CreateElement("startWager").SetText(d.Plan.StartWager.StringFixed(2))
	root.CreateElement("odds").SetText(d.Plan.Odds.StringFixed(2))
	root.CreateElement("days").SetText(strconv.Itoa(d.Plan.Days))
	if !d.Plan.CreatedAt.IsZero() {
		root.CreateElement("createdAt").SetText(d.Plan.CreatedAt.UTC().Format(time.RFC3339))
	}

	st := root.CreateElement("stats")
	st.CreateElement("currentDay").SetText(strconv.Itoa(d.Stats.CurrentDay))
	st.CreateElement("progressPercentage").SetText(strconv.Itoa(d.Stats.ProgressPercentage))
	st.CreateElement("currentWager").SetText(d.Stats.CurrentWager.StringFixed(2))
	st.CreateElement("potentialFinal").SetText(d.Stats.PotentialFinal.StringFixed(2))
	st.CreateElement("winRate").SetText(strconv.Itoa(d.Stats.WinRate))
	st.CreateElement("wins").SetText(strconv.Itoa(d.Stats.Wins))
	st.CreateElement("losses").SetText(strconv.Itoa(d.Stats.Losses))

	entries := root.CreateElement("dayEntries")
	for _, e := range d.DayEntries {
		el := entries.CreateElement("day")
		el.CreateAttr("number", strconv.Itoa(e.Day))
		el.CreateAttr("result", string(e.Result))
		el.CreateElement("wager").SetText(e.Wager.StringFixed(2))
		el.CreateElement("odds").SetText(e.Odds.StringFixed(2))
		el.CreateElement("winnings").SetText(e.Winnings.StringFixed(2))
	}

	doc.Indent(2)
	return doc
}

// WritePlanXML writes the XML rendering of d to w
func WritePlanXML(w io.Writer, d *models.PlanDetails) error {
	if _, err := PlanXML(d).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plan XML: %w", err)
	}
	return nil
}
