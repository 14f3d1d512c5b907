package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/blackrent/backoffice/internal/cache"
	errs "github.com/blackrent/backoffice/internal/errors"
	"github.com/blackrent/backoffice/internal/model"
	"github.com/blackrent/backoffice/internal/repository"
	"github.com/blackrent/backoffice/internal/similarity"
	"github.com/blackrent/backoffice/pkg/db/transactor"
)

// DefaultNameSimilarityThreshold is the cutoff above which two customer
// names make a duplicate candidate pair
const DefaultNameSimilarityThreshold = 0.75

// CustomerMergeService detects duplicate customers and merges them
type CustomerMergeService interface {
	FindDuplicateCustomers(context.Context) ([]*model.DuplicateGroup, error)
	SuggestMergedData(c1 *model.CustomerWithStats, c2 *model.CustomerWithStats) model.MergeSuggestion
	MergeCustomers(context.Context, *model.MergeRequest) (*model.MergeResult, error)
	StatsByCustomerID(context.Context, string) (*model.CustomerStats, error)
}

type customerMergeService struct {
	trx           transactor.Transactor
	customerRps   repository.CustomerRepository
	rentalRps     repository.RentalRepository
	customerCache cache.CustomerCacheRepository
	nameThreshold float64
}

// NewCustomerMergeService builds new CustomerMergeService. nameThreshold
// outside (0,1] falls back to DefaultNameSimilarityThreshold.
func NewCustomerMergeService(
	trx transactor.Transactor,
	customerRps repository.CustomerRepository,
	rentalRps repository.RentalRepository,
	customerCache cache.CustomerCacheRepository,
	nameThreshold float64,
) CustomerMergeService {
	if nameThreshold <= 0 || nameThreshold > 1 {
		nameThreshold = DefaultNameSimilarityThreshold
	}

	return &customerMergeService{
		trx:           trx,
		customerRps:   customerRps,
		rentalRps:     rentalRps,
		customerCache: customerCache,
		nameThreshold: nameThreshold,
	}
}

// FindDuplicateCustomers scans the whole customer population pairwise and
// clusters transitively connected candidate pairs, so a customer never
// appears in two groups. The scan is read-only and recomputed on every call.
func (s *customerMergeService) FindDuplicateCustomers(ctx context.Context) ([]*model.DuplicateGroup, error) {
	customers, err := s.customerRps.FindAllWithStats(ctx)
	if err != nil {
		return nil, err
	}

	type candidatePair struct {
		i, j       int
		similarity model.Similarity
		score      float64
	}

	sets := newDisjointSets(len(customers))
	pairs := make([]candidatePair, 0)

	for i := 0; i < len(customers); i++ {
		for j := i + 1; j < len(customers); j++ {
			scores := similarity.Score(&customers[i].Customer, &customers[j].Customer)
			sig, score, ok := scores.Best(s.nameThreshold)
			if !ok {
				continue
			}

			pairs = append(pairs, candidatePair{i: i, j: j, similarity: sig, score: score})
			sets.union(i, j)
		}
	}

	// one group per connected component, labeled with its strongest pair
	groupByRoot := make(map[int]*model.DuplicateGroup)
	roots := make([]int, 0)
	for _, p := range pairs {
		root := sets.find(p.i)
		g, ok := groupByRoot[root]
		if !ok {
			g = &model.DuplicateGroup{}
			groupByRoot[root] = g
			roots = append(roots, root)
		}

		if p.score > g.Score {
			g.Score = p.score
			g.Similarity = p.similarity
		}
	}

	for i, c := range customers {
		if g, ok := groupByRoot[sets.find(i)]; ok {
			g.Group = append(g.Group, c)
		}
	}

	groups := make([]*model.DuplicateGroup, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, groupByRoot[root])
	}
	return groups, nil
}

// SuggestMergedData proposes the canonical record for an approved merge:
// the customer with more rentals stays (ties keep c1), and each identity
// field is reconciled independently. Inputs are never mutated.
func (s *customerMergeService) SuggestMergedData(c1 *model.CustomerWithStats, c2 *model.CustomerWithStats) model.MergeSuggestion {
	primary, secondary := c1, c2
	if c2.Stats.RentalCount > c1.Stats.RentalCount {
		primary, secondary = c2, c1
	}

	return model.MergeSuggestion{
		Name:              longerNonEmpty(c1.Name, c2.Name),
		Email:             plausibleEmail(c1.Email, c2.Email),
		Phone:             longerNonEmpty(c1.Phone, c2.Phone),
		PrimaryCustomer:   primary,
		SecondaryCustomer: secondary,
	}
}

// MergeCustomers performs the irreversible migration: rewrite target
// identity, repoint all source rentals to target, delete source and report
// the resulting stats. Every write happens inside one transaction, so a
// failure at any step leaves the dataset untouched. Repeating a request
// after success fails its existence precondition instead of merging again.
func (s *customerMergeService) MergeCustomers(ctx context.Context, req *model.MergeRequest) (*model.MergeResult, error) {
	if req.TargetCustomerID == req.SourceCustomerID {
		return nil, errs.NewBusinessErr("sourceCustomerId", "target and source customer must differ")
	}
	if strings.TrimSpace(req.MergedData.Name) == "" {
		return nil, errs.NewBusinessErr("mergedData.name", "merged customer name is mandatory")
	}

	var res *model.MergeResult
	err := s.trx.WithinTransaction(ctx, func(txCtx context.Context) error {
		target, source, err := s.lockCustomerPair(txCtx, req.TargetCustomerID, req.SourceCustomerID)
		if err != nil {
			return err
		}

		target.Name = strings.TrimSpace(req.MergedData.Name)
		target.Email = strings.TrimSpace(req.MergedData.Email)
		target.Phone = strings.TrimSpace(req.MergedData.Phone)
		if err := s.customerRps.Update(txCtx, target); err != nil {
			return err
		}

		moved, err := s.rentalRps.ReassignOwner(txCtx, source.ID, target.ID)
		if err != nil {
			return errs.NewIntegrityErr("failed to reassign rentals, merge has been rolled back", err)
		}

		deleted, err := s.customerRps.DeleteByID(txCtx, source.ID)
		if err != nil || !deleted {
			return errs.NewIntegrityErr("failed to delete merged customer, merge has been rolled back", err)
		}

		stats, err := s.rentalRps.StatsByCustomerID(txCtx, target.ID)
		if err != nil {
			return err
		}

		res = &model.MergeResult{
			MergedCustomerID: target.ID,
			MergedRentals:    moved,
			FinalStats:       *stats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// best-effort eviction after commit, stale entries expire by TTL anyway
	for _, id := range []string{req.TargetCustomerID, req.SourceCustomerID} {
		if err := s.customerCache.DeleteByID(ctx, id); err != nil {
			logrus.Warnf("failed to evict customer %s from cache after merge - %v", id, err)
		}
	}

	return res, nil
}

func (s *customerMergeService) StatsByCustomerID(ctx context.Context, id string) (*model.CustomerStats, error) {
	c, err := s.customerRps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NewEntryNotFoundErr(fmt.Sprintf("customer %s does not exist", id))
	}

	return s.rentalRps.StatsByCustomerID(ctx, id)
}

// lockCustomerPair locks both customer rows in ascending id order, so two
// merges sharing a customer cannot deadlock and the later one observes the
// earlier one's deletion
func (s *customerMergeService) lockCustomerPair(ctx context.Context, targetID string, sourceID string) (*model.Customer, *model.Customer, error) {
	ids := []string{targetID, sourceID}
	if ids[1] < ids[0] {
		ids[0], ids[1] = ids[1], ids[0]
	}

	locked := make(map[string]*model.Customer, 2)
	for _, id := range ids {
		c, err := s.customerRps.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if c == nil {
			return nil, nil, errs.NewEntryNotFoundErr(fmt.Sprintf("customer %s no longer exists", id))
		}
		locked[id] = c
	}

	return locked[targetID], locked[sourceID], nil
}

func longerNonEmpty(a string, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	switch {
	case a == "":
		return b
	case b == "":
		return a
	case len(b) > len(a):
		return b
	}
	return a
}

func plausibleEmail(a string, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	aPlausible := strings.Contains(a, "@")
	bPlausible := strings.Contains(b, "@")
	switch {
	case aPlausible && !bPlausible:
		return a
	case bPlausible && !aPlausible:
		return b
	case a != "":
		return a
	}
	return b
}

// disjointSets is a plain union-find over customer slice indexes
type disjointSets struct {
	parent []int
}

func newDisjointSets(size int) *disjointSets {
	parent := make([]int, size)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSets{parent: parent}
}

func (d *disjointSets) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *disjointSets) union(i int, j int) {
	ri, rj := d.find(i), d.find(j)
	if ri != rj {
		d.parent[rj] = ri
	}
}
