// Package graph derives the scheduling dependency structure of the work item
// network: which items an edit reaches, in what order they must be
// rescheduled, and the per-item facts (descendant envelope, predecessor
// floor, moving predecessors) the scheduler consumes.
package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/scheduler"
)

// Provider implements scheduler.GraphProvider over the repositories. Each
// call loads one consistent snapshot of the item and relation tables into an
// indexed arena and answers from that.
type Provider struct {
	workItems repository.WorkItemRepo
	relations repository.RelationRepo
	cal       *calendar.Calendar
}

var _ scheduler.GraphProvider = (*Provider)(nil)

// NewProvider creates a Provider over the given repositories and calendar.
func NewProvider(workItems repository.WorkItemRepo, relations repository.RelationRepo, cal *calendar.Calendar) *Provider {
	return &Provider{workItems: workItems, relations: relations, cal: cal}
}

// arena holds the loaded graph in indexed form: items in a slice, hierarchy
// and follows edges as adjacency lists of indices.
type arena struct {
	items    []*domain.WorkItem
	index    map[string]int
	parent   []int   // hierarchy: index of parent, -1 when none
	children [][]int // hierarchy: child indices
	preds    [][]int // follows: direct predecessor indices per successor
	succs    [][]int // follows: direct successor indices per predecessor
}

// load builds the arena. Seed pointers replace their freshly loaded rows so
// the walk observes the edits applied in the current session and mutations
// land on the caller's objects.
func (p *Provider) load(ctx context.Context, seeds []*domain.WorkItem) (*arena, error) {
	items, err := p.workItems.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading work items: %w", err)
	}
	relations, err := p.relations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading relations: %w", err)
	}

	a := &arena{index: make(map[string]int, len(items))}
	for _, w := range items {
		a.index[w.ID] = len(a.items)
		a.items = append(a.items, w)
	}
	for _, seed := range seeds {
		if i, ok := a.index[seed.ID]; ok {
			a.items[i] = seed
		} else {
			a.index[seed.ID] = len(a.items)
			a.items = append(a.items, seed)
		}
	}

	n := len(a.items)
	a.parent = make([]int, n)
	a.children = make([][]int, n)
	a.preds = make([][]int, n)
	a.succs = make([][]int, n)

	for i, w := range a.items {
		a.parent[i] = -1
		if w.ParentID != nil {
			if pi, ok := a.index[*w.ParentID]; ok {
				a.parent[i] = pi
			}
		}
	}
	for i := range a.items {
		if pi := a.parent[i]; pi >= 0 {
			a.children[pi] = append(a.children[pi], i)
		}
	}
	for _, rel := range relations {
		if rel.Type != domain.RelationFollows {
			continue
		}
		pi, ok := a.index[rel.PredecessorID]
		if !ok {
			continue
		}
		si, ok := a.index[rel.SuccessorID]
		if !ok {
			continue
		}
		a.preds[si] = append(a.preds[si], pi)
		a.succs[pi] = append(a.succs[pi], si)
	}
	return a, nil
}

// effectivePreds returns the item's predecessors including those inherited
// through its ancestors: an item follows whatever its ancestors follow.
func (a *arena) effectivePreds(i int) []int {
	seen := make(map[int]bool)
	var out []int
	for n := i; n >= 0; n = a.parent[n] {
		for _, pi := range a.preds[n] {
			if !seen[pi] {
				seen[pi] = true
				out = append(out, pi)
			}
		}
	}
	return out
}

// descendants returns every transitive descendant of i.
func (a *arena) descendants(i int) []int {
	var out []int
	stack := append([]int(nil), a.children[i]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		stack = append(stack, a.children[n]...)
	}
	return out
}

// dependents returns the set of indices transitively affected by the seeds:
// successors (direct or inherited) of affected items, their descendants, and
// the ancestors whose envelopes the changes feed into. Manually scheduled
// items are never included; follows expansion stops at them, while hierarchy
// expansion passes through so ancestors above a manual item still
// re-aggregate the subtree below it.
func (a *arena) dependents(seedIdxs []int) map[int]bool {
	// successorsOf[p] = items whose effective predecessors include p.
	successorsOf := make(map[int][]int)
	for i := range a.items {
		for _, pi := range a.effectivePreds(i) {
			successorsOf[pi] = append(successorsOf[pi], i)
		}
	}

	affected := make(map[int]bool)
	queue := append([]int(nil), seedIdxs...)
	reached := make(map[int]bool)
	seed := make(map[int]bool, len(seedIdxs))
	for _, i := range seedIdxs {
		reached[i] = true
		seed[i] = true
	}

	expand := func(i int) {
		if !reached[i] {
			reached[i] = true
			if !a.items[i].ScheduleManually {
				affected[i] = true
			}
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		// Ancestor envelopes span the whole subtree, so the parent chain is
		// followed even through a manual item.
		if pi := a.parent[i]; pi >= 0 {
			expand(pi)
		}
		// A manual item is never rescheduled, so nothing moves past it along
		// follows edges. Manual seeds still expand: the user just moved them.
		if a.items[i].ScheduleManually && !seed[i] {
			continue
		}
		for _, si := range successorsOf[i] {
			expand(si)
		}
	}
	return affected
}

// scheduleOrder sorts the affected indices topologically: predecessors before
// successors, descendants before ancestors. The ready queue is kept sorted by
// item ID for deterministic output.
func (a *arena) scheduleOrder(affected map[int]bool) ([]int, error) {
	edges := make(map[int][]int, len(affected)) // from -> to, "from schedules first"
	indeg := make(map[int]int, len(affected))
	for i := range affected {
		indeg[i] = 0
	}
	addEdge := func(from, to int) {
		if affected[from] && affected[to] {
			edges[from] = append(edges[from], to)
			indeg[to]++
		}
	}
	for i := range affected {
		for _, pi := range a.effectivePreds(i) {
			addEdge(pi, i)
		}
		if pi := a.parent[i]; pi >= 0 {
			addEdge(i, pi)
		}
	}

	var ready []int
	for i, d := range indeg {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	byID := func(idxs []int) {
		sort.Slice(idxs, func(x, y int) bool { return a.items[idxs[x]].ID < a.items[idxs[y]].ID })
	}
	byID(ready)

	var order []int
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		var next []int
		for _, j := range edges[i] {
			indeg[j]--
			if indeg[j] == 0 {
				next = append(next, j)
			}
		}
		byID(next)
		ready = append(ready, next...)
	}
	if len(order) != len(affected) {
		return nil, fmt.Errorf("dependency graph has a cycle (%d of %d items ordered)", len(order), len(affected))
	}
	return order, nil
}

// InScheduleOrder implements scheduler.GraphProvider.
func (p *Provider) InScheduleOrder(ctx context.Context, session *scheduler.Session, seeds []*domain.WorkItem,
	visit func(item *domain.WorkItem, dep scheduler.Dependency) error) error {

	a, err := p.load(ctx, seeds)
	if err != nil {
		return err
	}

	seedIdxs := make([]int, 0, len(seeds))
	seedSet := make(map[int]bool, len(seeds))
	for _, seed := range seeds {
		i := a.index[seed.ID]
		seedIdxs = append(seedIdxs, i)
		seedSet[i] = true
	}

	affected := a.dependents(seedIdxs)
	// Seeds participate in ordering via their edges but hold the user's own
	// dates and are not revisited.
	for i := range seedSet {
		delete(affected, i)
	}

	order, err := a.scheduleOrder(affected)
	if err != nil {
		return err
	}

	for _, i := range order {
		// Derived at visit time: earlier visits have already rescheduled
		// the items this view reads.
		if err := visit(a.items[i], p.dependencyFor(a, i, session)); err != nil {
			return err
		}
	}
	return nil
}

// dependencyFor derives the scheduler's per-item view from current arena
// state.
func (p *Provider) dependencyFor(a *arena, i int, session *scheduler.Session) scheduler.Dependency {
	dep := scheduler.Dependency{}

	if desc := a.descendants(i); len(desc) > 0 {
		dep.HasDescendants = true
		dep.StartDate, dep.DueDate = a.envelope(desc)
	}

	dep.SoonestStart = p.soonestStart(a, i)

	var moving []int
	for _, pi := range a.effectivePreds(i) {
		if session.Moved(a.items[pi]) {
			moving = append(moving, pi)
		}
	}
	sortByBindingDate(a, moving)
	for _, pi := range moving {
		dep.MovingPredecessors = append(dep.MovingPredecessors, a.items[pi])
	}
	return dep
}

// envelope returns (min, max) over every start and due date carried by the
// given items. Manually scheduled descendants still count; they occupy time
// even though the engine never moves them.
func (a *arena) envelope(idxs []int) (*time.Time, *time.Time) {
	var earliest, latest *time.Time
	consider := func(d *time.Time) {
		if d == nil {
			return
		}
		if earliest == nil || d.Before(*earliest) {
			earliest = domain.CopyDate(d)
		}
		if latest == nil || d.After(*latest) {
			latest = domain.CopyDate(d)
		}
	}
	for _, i := range idxs {
		consider(a.items[i].StartDate)
		consider(a.items[i].DueDate)
	}
	return earliest, latest
}

// soonestStart returns the floor imposed on item i by its effective
// predecessors: the latest predecessor finish, rolled to the next working
// day under i's calendar. Nil when no predecessor carries a date.
func (p *Provider) soonestStart(a *arena, i int) *time.Time {
	item := a.items[i]
	var floor *time.Time
	for _, pi := range a.effectivePreds(i) {
		pred := a.items[pi]
		base := pred.DueDate
		if base == nil {
			base = pred.StartDate
		}
		if base == nil {
			continue
		}
		d := p.cal.SoonestWorkingDay(item, domain.AddDays(*base, 1))
		if floor == nil || d.After(*floor) {
			floor = &d
		}
	}
	return floor
}

// sortByBindingDate orders moving predecessor indices most binding first:
// descending by the date they impose (due before start), predecessors
// without dates last, ties broken by ID.
func sortByBindingDate(a *arena, idxs []int) {
	bindingDate := func(i int) *time.Time {
		if a.items[i].DueDate != nil {
			return a.items[i].DueDate
		}
		return a.items[i].StartDate
	}
	sort.SliceStable(idxs, func(x, y int) bool {
		dx, dy := bindingDate(idxs[x]), bindingDate(idxs[y])
		if (dx == nil) != (dy == nil) {
			return dx != nil
		}
		if dx != nil && dy != nil && !dx.Equal(*dy) {
			return dx.After(*dy)
		}
		return a.items[idxs[x]].ID < a.items[idxs[y]].ID
	})
}

// Envelope returns the descendant envelope of the given item and whether it
// has descendants at all.
func (p *Provider) Envelope(ctx context.Context, itemID string) (start, due *time.Time, hasDescendants bool, err error) {
	a, err := p.load(ctx, nil)
	if err != nil {
		return nil, nil, false, err
	}
	i, ok := a.index[itemID]
	if !ok {
		return nil, nil, false, fmt.Errorf("work item %s: %w", itemID, repository.ErrNotFound)
	}
	desc := a.descendants(i)
	if len(desc) == 0 {
		return nil, nil, false, nil
	}
	start, due = a.envelope(desc)
	return start, due, true, nil
}

// SoonestStart implements scheduler.GraphProvider for a single item, used by
// the parent-inheritance phase.
func (p *Provider) SoonestStart(ctx context.Context, itemID string) (*time.Time, error) {
	a, err := p.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	i, ok := a.index[itemID]
	if !ok {
		return nil, fmt.Errorf("work item %s: %w", itemID, repository.ErrNotFound)
	}
	return p.soonestStart(a, i), nil
}
