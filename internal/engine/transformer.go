package engine

import (
	"sort"

	"claw/internal/config"
	"claw/internal/errors"
)

// transformationGroup is the queue of instances of one configured group.
type transformationGroup struct {
	cfg   *config.Group
	queue []Transformation
}

// Transformer owns the per-group transformation queues and the monotonic
// counter feeding generated names.
type Transformer struct {
	groups  []*transformationGroup
	byName  map[string]*transformationGroup
	counter int
}

// NewTransformer builds empty queues in the configuration's group order.
func NewTransformer(cfg *config.Configuration) *Transformer {
	t := &Transformer{byName: make(map[string]*transformationGroup)}
	for _, g := range cfg.Groups() {
		group := &transformationGroup{cfg: g}
		t.groups = append(t.groups, group)
		t.byName[g.Name] = group
	}
	return t
}

// NextTransformationCounter returns the next value of the monotonic
// transformation counter.
func (t *Transformer) NextTransformationCounter() int {
	t.counter++
	return t.counter
}

// AddTransformation enqueues an instance into a group's queue. A
// transformation applied in an earlier group may enqueue into a later one;
// late additions are analyzed when their group is applied.
func (t *Transformer) AddTransformation(groupName string, tr Transformation) error {
	group, ok := t.byName[groupName]
	if !ok {
		return errors.NewInternalf("no transformation group %q configured", groupName)
	}
	group.queue = append(group.queue, tr)
	return nil
}

// sortQueue orders a group's queue in document order by the source line of
// the triggering pragma, keeping insertion order for ties.
func (g *transformationGroup) sortQueue() {
	sort.SliceStable(g.queue, func(i, j int) bool {
		return g.queue[i].StartLine() < g.queue[j].StartLine()
	})
}
