// Package interact maps pointer hover events on rendered markers to
// highlight commands and the detail payload shown for the hovered word.
//
// At most one marker is highlighted at a time. Hovering a new marker first
// restores the previous one; hovering the already-hovered marker and
// unhovering a marker that is not hovered are both no-ops.
package interact

import (
	"fmt"

	"github.com/vanderheijden86/affectmap/pkg/model"
	"github.com/vanderheijden86/affectmap/pkg/scene"
)

// Highlighted and resting marker attributes.
var (
	HighlightAttrs = scene.MarkerAttrs{Radius: scene.HighlightRadius, Opacity: scene.HighlightOpacity}
	RestAttrs      = scene.MarkerAttrs{Radius: scene.DefaultRadius, Opacity: scene.DefaultOpacity}
)

// MarkerChange sets one marker's attributes.
type MarkerChange struct {
	Key   model.Key
	Attrs scene.MarkerAttrs
}

// HighlightCommand is the outcome of a hover event. Changes are applied in
// order; Detail replaces the current payload and ClearDetail removes it.
type HighlightCommand struct {
	Changes     []MarkerChange
	Detail      *DetailPayload
	ClearDetail bool
}

// Empty reports whether the command does nothing.
func (c HighlightCommand) Empty() bool {
	return len(c.Changes) == 0 && c.Detail == nil && !c.ClearDetail
}

// Controller tracks the hovered marker.
type Controller struct {
	points  map[model.Key]model.Point
	hovered *model.Key
	detail  *DetailPayload
}

// NewController returns a controller with no hoverable points.
func NewController() *Controller {
	return &Controller{points: make(map[model.Key]model.Point)}
}

// Sync replaces the set of hoverable points with the visible set. If the
// hovered point is no longer visible its hover state and detail are dropped
// without a restore change, since its marker has been removed. Sync reports
// whether that happened.
func (c *Controller) Sync(visible []model.Point) bool {
	c.points = make(map[model.Key]model.Point, len(visible))
	for _, p := range visible {
		c.points[p.Key()] = p
	}
	if c.hovered == nil {
		return false
	}
	if _, ok := c.points[*c.hovered]; ok {
		return false
	}
	c.hovered = nil
	c.detail = nil
	return true
}

// OnHover highlights key, restoring any previously hovered marker first.
func (c *Controller) OnHover(key model.Key) HighlightCommand {
	if c.hovered != nil && *c.hovered == key {
		return HighlightCommand{}
	}
	p, ok := c.points[key]
	if !ok {
		return HighlightCommand{}
	}

	var cmd HighlightCommand
	if c.hovered != nil {
		cmd.Changes = append(cmd.Changes, MarkerChange{Key: *c.hovered, Attrs: RestAttrs})
	}
	cmd.Changes = append(cmd.Changes, MarkerChange{Key: key, Attrs: HighlightAttrs})

	detail := NewDetailPayload(p)
	cmd.Detail = &detail

	k := key
	c.hovered = &k
	c.detail = &detail
	return cmd
}

// OnUnhover restores key if it is the hovered marker.
func (c *Controller) OnUnhover(key model.Key) HighlightCommand {
	if c.hovered == nil || *c.hovered != key {
		return HighlightCommand{}
	}
	c.hovered = nil
	c.detail = nil
	return HighlightCommand{
		Changes:     []MarkerChange{{Key: key, Attrs: RestAttrs}},
		ClearDetail: true,
	}
}

// Release unhovers whatever is hovered. The pointer leaving the plot uses it.
func (c *Controller) Release() HighlightCommand {
	if c.hovered == nil {
		return HighlightCommand{}
	}
	return c.OnUnhover(*c.hovered)
}

// Hovered returns the hovered key.
func (c *Controller) Hovered() (model.Key, bool) {
	if c.hovered == nil {
		return model.Key{}, false
	}
	return *c.hovered, true
}

// Detail returns the current payload, or nil.
func (c *Controller) Detail() *DetailPayload { return c.detail }

// Reset forgets all state; used when the dataset is replaced.
func (c *Controller) Reset() {
	c.points = make(map[model.Key]model.Point)
	c.hovered = nil
	c.detail = nil
}

// DetailPayload describes the hovered word.
type DetailPayload struct {
	Word        string      `json:"word"`
	Category    string      `json:"category"`
	Level       string      `json:"level"`
	Coord       model.Coord `json:"coord"`
	ValenceSign string      `json:"valence_sign"`
	ArousalSign string      `json:"arousal_sign"`
}

// Sign values.
const (
	ValencePositive = "positive"
	ValenceNegative = "negative"
	ArousalHigh     = "high"
	ArousalLow      = "low"
)

// NewDetailPayload derives the payload for p. Zero counts as negative
// valence and low arousal.
func NewDetailPayload(p model.Point) DetailPayload {
	d := DetailPayload{
		Word:        p.Word,
		Category:    p.Category,
		Level:       p.Level,
		Coord:       p.Coord,
		ValenceSign: ValenceNegative,
		ArousalSign: ArousalLow,
	}
	if p.Coord.X() > 0 {
		d.ValenceSign = ValencePositive
	}
	if p.Coord.Y() > 0 {
		d.ArousalSign = ArousalHigh
	}
	return d
}

// Key returns the identity key of the described point.
func (d DetailPayload) Key() model.Key {
	return model.Key{Word: d.Word, Category: d.Category, Level: d.Level}
}

// Quadrant returns the fixed caption of the quadrant the word falls in.
func (d DetailPayload) Quadrant() string {
	switch {
	case d.ValenceSign == ValencePositive && d.ArousalSign == ArousalHigh:
		return scene.QuadrantLabels[0].Text
	case d.ArousalSign == ArousalHigh:
		return scene.QuadrantLabels[1].Text
	case d.ValenceSign == ValencePositive:
		return scene.QuadrantLabels[3].Text
	default:
		return scene.QuadrantLabels[2].Text
	}
}

// Summary is the one-line "word (category)" form.
func (d DetailPayload) Summary() string {
	return fmt.Sprintf("%s (%s)", d.Word, d.Category)
}

// Lines renders the tooltip rows.
func (d DetailPayload) Lines() []string {
	valence := "负面"
	if d.ValenceSign == ValencePositive {
		valence = "正面"
	}
	arousal := "低唤醒"
	if d.ArousalSign == ArousalHigh {
		arousal = "高唤醒"
	}
	return []string{
		d.Word,
		"类别: " + d.Category,
		"强度: " + d.Level,
		fmt.Sprintf("坐标: [%.2f, %.2f]", d.Coord.X(), d.Coord.Y()),
		"愉悦度: " + valence,
		"唤醒度: " + arousal,
		"象限: " + d.Quadrant(),
	}
}
