package service

import (
	"context"
	"fmt"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/graph"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/scheduler"
)

type relationService struct {
	relations repository.RelationRepo
	uow       db.UnitOfWork
	cal       *calendar.Calendar
}

func NewRelationService(relations repository.RelationRepo, uow db.UnitOfWork, cal *calendar.Calendar) RelationService {
	return &relationService{relations: relations, uow: uow, cal: cal}
}

func (s *relationService) Follow(ctx context.Context, predecessorID, successorID string) (*scheduler.Result, error) {
	if predecessorID == successorID {
		return nil, fmt.Errorf("work item cannot follow itself")
	}

	var res *scheduler.Result
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		relations := repository.NewSQLiteRelationRepo(tx)

		pred, err := items.GetByID(ctx, predecessorID)
		if err != nil {
			return err
		}
		if _, err := items.GetByID(ctx, successorID); err != nil {
			return err
		}
		if err := checkFollowCycle(ctx, items, relations, predecessorID, successorID); err != nil {
			return err
		}

		rel := &domain.Relation{
			PredecessorID: predecessorID,
			SuccessorID:   successorID,
			Type:          domain.RelationFollows,
		}
		if err := relations.Create(ctx, rel); err != nil {
			return err
		}

		// The predecessor did not move, so the pass snaps the successor side
		// to the new floor without disturbing anything downstream of slack.
		session := scheduler.NewSession(pred)
		provider := graph.NewProvider(items, relations, s.cal)
		engine := scheduler.New(provider, s.cal, session, pred)
		res, err = engine.Call(ctx, scheduler.AttrStartDate, scheduler.AttrDueDate)
		if err != nil {
			return err
		}
		return persistSchedule(ctx, items, res, false)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *relationService) Link(ctx context.Context, predecessorID, successorID string, t domain.RelationType) error {
	if !domain.ValidRelationTypes[string(t)] {
		return fmt.Errorf("unknown relation type %q", t)
	}
	if t == domain.RelationFollows {
		_, err := s.Follow(ctx, predecessorID, successorID)
		return err
	}
	if predecessorID == successorID {
		return fmt.Errorf("work item cannot relate to itself")
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		relations := repository.NewSQLiteRelationRepo(tx)
		if _, err := items.GetByID(ctx, predecessorID); err != nil {
			return err
		}
		if _, err := items.GetByID(ctx, successorID); err != nil {
			return err
		}
		return relations.Create(ctx, &domain.Relation{
			PredecessorID: predecessorID,
			SuccessorID:   successorID,
			Type:          t,
		})
	})
}

func (s *relationService) Unfollow(ctx context.Context, predecessorID, successorID string) error {
	return s.relations.Delete(ctx, predecessorID, successorID, domain.RelationFollows)
}

func (s *relationService) ListPredecessors(ctx context.Context, workItemID string) ([]domain.Relation, error) {
	return s.relations.ListPredecessors(ctx, workItemID)
}

func (s *relationService) ListSuccessors(ctx context.Context, workItemID string) ([]domain.Relation, error) {
	return s.relations.ListSuccessors(ctx, workItemID)
}

func (s *relationService) List(ctx context.Context) ([]domain.Relation, error) {
	return s.relations.List(ctx)
}

// checkFollowCycle rejects a follows relation that would close a loop:
// the predecessor (or any of its ancestors' dependency sources) must not be
// reachable from the successor, and neither side may be an ancestor of the
// other.
func checkFollowCycle(ctx context.Context, items repository.WorkItemRepo,
	relations repository.RelationRepo, predecessorID, successorID string) error {

	predAncestors, err := ancestorsOrSelf(ctx, items, predecessorID)
	if err != nil {
		return err
	}
	succAncestors, err := ancestorsOrSelf(ctx, items, successorID)
	if err != nil {
		return err
	}
	if predAncestors[successorID] || succAncestors[predecessorID] {
		return fmt.Errorf("follows relation between an item and its own ancestor line is not allowed")
	}

	// Walk follows edges forward from the successor; reaching the
	// predecessor would make the new relation circular.
	visited := make(map[string]bool)
	stack := []string{successorID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		if predAncestors[id] {
			return fmt.Errorf("relation would create a dependency cycle")
		}
		succs, err := relations.ListSuccessors(ctx, id)
		if err != nil {
			return err
		}
		for _, rel := range succs {
			if rel.Type == domain.RelationFollows {
				stack = append(stack, rel.SuccessorID)
			}
		}
	}
	return nil
}

func ancestorsOrSelf(ctx context.Context, items repository.WorkItemRepo, id string) (map[string]bool, error) {
	out := make(map[string]bool)
	for cur := &id; cur != nil; {
		if out[*cur] {
			break
		}
		out[*cur] = true
		w, err := items.GetByID(ctx, *cur)
		if err != nil {
			return nil, err
		}
		cur = w.ParentID
	}
	return out, nil
}
