package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	cacheMocks "github.com/blackrent/backoffice/internal/cache/mocks"
	errs "github.com/blackrent/backoffice/internal/errors"
	"github.com/blackrent/backoffice/internal/model"
	rpsMocks "github.com/blackrent/backoffice/internal/repository/mocks"
)

// passthroughTransactor runs the callback on the caller's context; a failed
// callback stands for a rolled back transaction
type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, txFunc func(context.Context) error) error {
	return txFunc(ctx)
}

type mergeServiceTestSuite struct {
	suite.Suite
	mergeSvc          CustomerMergeService
	customerRpsMock   *rpsMocks.CustomerRepository
	rentalRpsMock     *rpsMocks.RentalRepository
	customerCacheMock *cacheMocks.CustomerCacheRepository
	ctx               context.Context
}

func (s *mergeServiceTestSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.customerRpsMock = rpsMocks.NewCustomerRepository(t)
	s.rentalRpsMock = rpsMocks.NewRentalRepository(t)
	s.customerCacheMock = cacheMocks.NewCustomerCacheRepository(t)
	s.mergeSvc = NewCustomerMergeService(passthroughTransactor{}, s.customerRpsMock, s.rentalRpsMock, s.customerCacheMock, 0.75)
}

func customerWithStats(id, name, email, phone string, rentals int, revenue int64) *model.CustomerWithStats {
	return &model.CustomerWithStats{
		Customer: model.Customer{ID: id, Name: name, Email: email, Phone: phone},
		Stats: model.CustomerStats{
			RentalCount:  rentals,
			TotalRevenue: decimal.NewFromInt(revenue),
		},
	}
}

func (s *mergeServiceTestSuite) TestFindDuplicatesSharedEmail() {
	population := []*model.CustomerWithStats{
		customerWithStats("1", "Ján Novák", "jan@x.sk", "0900123456", 3, 300),
		customerWithStats("2", "Jan Novak", "jan@x.sk", "", 2, 150),
		customerWithStats("3", "Peter Kováč", "peter@y.sk", "0911555777", 1, 80),
	}
	s.customerRpsMock.On("FindAllWithStats", s.ctx).Return(population, nil).Once()

	s.T().Log("customers sharing an email must form one group labeled by the email signal")
	{
		groups, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Assert().Equal(model.SimilarityEmail, groups[0].Similarity)
		s.Assert().Equal(float64(1), groups[0].Score)
		s.Require().Len(groups[0].Group, 2)
		s.Assert().Equal("1", groups[0].Group[0].ID)
		s.Assert().Equal("2", groups[0].Group[1].ID)
	}
}

func (s *mergeServiceTestSuite) TestFindDuplicatesTransitiveGrouping() {
	population := []*model.CustomerWithStats{
		customerWithStats("a", "Jana Malá", "jana@x.sk", "", 1, 50),
		customerWithStats("b", "Jana Mala", "jana@x.sk", "0907 111 222", 0, 0),
		customerWithStats("c", "J. Malá", "", "0907111222", 2, 120),
	}
	s.customerRpsMock.On("FindAllWithStats", s.ctx).Return(population, nil).Once()

	s.T().Log("a~b by email and b~c by phone must collapse into a single group of three")
	{
		groups, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Assert().Len(groups[0].Group, 3)

		seen := make(map[string]int)
		for _, g := range groups {
			for _, c := range g.Group {
				seen[c.ID]++
			}
		}
		for id, count := range seen {
			s.Assert().Equalf(1, count, "customer %s must not appear in two groups", id)
		}
	}
}

func (s *mergeServiceTestSuite) TestFindDuplicatesNoCandidates() {
	population := []*model.CustomerWithStats{
		customerWithStats("1", "Milan Urban", "milan@x.sk", "0900111222", 1, 90),
		customerWithStats("2", "Eva Šimková", "eva@y.sk", "0944333555", 4, 700),
	}
	s.customerRpsMock.On("FindAllWithStats", s.ctx).Return(population, nil).Once()

	s.T().Log("unrelated customers must produce no groups")
	{
		groups, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
		s.Require().NoError(err)
		s.Assert().Empty(groups)
	}
}

func (s *mergeServiceTestSuite) TestFindDuplicatesIdempotent() {
	population := []*model.CustomerWithStats{
		customerWithStats("1", "Ján Novák", "jan@x.sk", "", 3, 300),
		customerWithStats("2", "Jan Novak", "jan@x.sk", "", 2, 150),
	}
	s.customerRpsMock.On("FindAllWithStats", s.ctx).Return(population, nil).Twice()

	s.T().Log("two scans over unchanged data must return the same groups")
	{
		first, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
		s.Require().NoError(err)
		second, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
		s.Require().NoError(err)
		s.Assert().Equal(first, second)
	}
}

func (s *mergeServiceTestSuite) TestFindDuplicatesReadFailurePropagates() {
	readErr := errors.New("connection reset")
	s.customerRpsMock.On("FindAllWithStats", s.ctx).Return(nil, readErr).Once()

	_, err := s.mergeSvc.FindDuplicateCustomers(s.ctx)
	s.Assert().ErrorIs(err, readErr)
}

func (s *mergeServiceTestSuite) TestSuggestPrimaryByRentalCount() {
	c1 := customerWithStats("1", "Jan Novak", "", "0900123", 2, 150)
	c2 := customerWithStats("2", "Ján Novák", "jan@x.sk", "0900123456", 5, 900)

	s.T().Log("the customer with more rentals must be suggested as primary")
	{
		suggestion := s.mergeSvc.SuggestMergedData(c1, c2)
		s.Assert().Equal(c2, suggestion.PrimaryCustomer)
		s.Assert().Equal(c1, suggestion.SecondaryCustomer)
	}

	s.T().Log("a rental count tie must keep the first argument as primary")
	{
		c2.Stats.RentalCount = 2
		suggestion := s.mergeSvc.SuggestMergedData(c1, c2)
		s.Assert().Equal(c1, suggestion.PrimaryCustomer)
	}
}

func (s *mergeServiceTestSuite) TestSuggestFieldReconciliation() {
	c1 := customerWithStats("1", "Jan Novak", "jan.novak", "0900123", 1, 50)
	c2 := customerWithStats("2", "Ján Novák ml.", "jan@x.sk", "+421900123456", 1, 70)

	suggestion := s.mergeSvc.SuggestMergedData(c1, c2)

	s.Assert().Equal("Ján Novák ml.", suggestion.Name, "longer name must win")
	s.Assert().Equal("jan@x.sk", suggestion.Email, "email containing @ must win")
	s.Assert().Equal("+421900123456", suggestion.Phone, "longer phone must win")
}

func (s *mergeServiceTestSuite) TestSuggestEmptyNeverWins() {
	c1 := customerWithStats("1", "", "", "", 0, 0)
	c2 := customerWithStats("2", "Jana Malá", "jana@x.sk", "0907111222", 0, 0)

	suggestion := s.mergeSvc.SuggestMergedData(c1, c2)

	s.Assert().Equal("Jana Malá", suggestion.Name)
	s.Assert().Equal("jana@x.sk", suggestion.Email)
	s.Assert().Equal("0907111222", suggestion.Phone)
}

func (s *mergeServiceTestSuite) TestSuggestDoesNotMutateInputs() {
	c1 := customerWithStats("1", "Jan", "jan@x.sk", "0900", 1, 10)
	c2 := customerWithStats("2", "Jana Dlhá", "jana@x.sk", "0907111", 2, 20)
	c1Copy := *c1
	c2Copy := *c2

	s.mergeSvc.SuggestMergedData(c1, c2)

	s.Assert().Equal(c1Copy, *c1)
	s.Assert().Equal(c2Copy, *c2)
}

func (s *mergeServiceTestSuite) TestMergeRejectsSameCustomer() {
	req := &model.MergeRequest{
		TargetCustomerID: "1",
		SourceCustomerID: "1",
		MergedData:       model.MergedData{Name: "Jan Novak"},
	}

	s.T().Log("merging a customer into itself must fail before any read or write")
	{
		_, err := s.mergeSvc.MergeCustomers(s.ctx, req)
		var bizErr *errs.BusinessErr
		s.Assert().ErrorAs(err, &bizErr)
		s.customerRpsMock.AssertNotCalled(s.T(), "FindByIDForUpdate", mock.Anything, mock.Anything)
	}
}

func (s *mergeServiceTestSuite) TestMergeRejectsEmptyName() {
	req := &model.MergeRequest{
		TargetCustomerID: "1",
		SourceCustomerID: "2",
		MergedData:       model.MergedData{Name: "   "},
	}

	_, err := s.mergeSvc.MergeCustomers(s.ctx, req)
	var bizErr *errs.BusinessErr
	s.Assert().ErrorAs(err, &bizErr)
}

func (s *mergeServiceTestSuite) TestMergeSourceNoLongerExists() {
	target := &model.Customer{ID: "a-target", Name: "Ján Novák", CreatedAt: time.Now().UTC()}
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "a-target").Return(target, nil).Once()
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "b-source").Return(nil, nil).Once()

	req := &model.MergeRequest{
		TargetCustomerID: "a-target",
		SourceCustomerID: "b-source",
		MergedData:       model.MergedData{Name: "Ján Novák"},
	}

	s.T().Log("a vanished source customer must fail the precondition with no writes")
	{
		_, err := s.mergeSvc.MergeCustomers(s.ctx, req)
		var notFoundErr *errs.EntryNotFoundErr
		s.Assert().ErrorAs(err, &notFoundErr)
		s.customerRpsMock.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
		s.rentalRpsMock.AssertNotCalled(s.T(), "ReassignOwner", mock.Anything, mock.Anything, mock.Anything)
		s.customerCacheMock.AssertNotCalled(s.T(), "DeleteByID", mock.Anything, mock.Anything)
	}
}

func (s *mergeServiceTestSuite) TestMergeDeleteFailureRollsBack() {
	target := &model.Customer{ID: "a-target", Name: "Ján Novák"}
	source := &model.Customer{ID: "b-source", Name: "Jan Novak"}
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "a-target").Return(target, nil).Once()
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "b-source").Return(source, nil).Once()
	s.customerRpsMock.On("Update", s.ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()
	s.rentalRpsMock.On("ReassignOwner", s.ctx, "b-source", "a-target").Return(int64(2), nil).Once()
	s.customerRpsMock.On("DeleteByID", s.ctx, "b-source").Return(false, errors.New("foreign key violation")).Once()

	req := &model.MergeRequest{
		TargetCustomerID: "a-target",
		SourceCustomerID: "b-source",
		MergedData:       model.MergedData{Name: "Ján Novák", Email: "jan@x.sk", Phone: "0900123456"},
	}

	s.T().Log("a failure after rental reassignment must surface as integrity error and skip cache eviction")
	{
		res, err := s.mergeSvc.MergeCustomers(s.ctx, req)
		var integrityErr *errs.IntegrityErr
		s.Assert().ErrorAs(err, &integrityErr)
		s.Assert().Nil(res)
		s.rentalRpsMock.AssertNotCalled(s.T(), "StatsByCustomerID", mock.Anything, mock.Anything)
		s.customerCacheMock.AssertNotCalled(s.T(), "DeleteByID", mock.Anything, mock.Anything)
	}
}

func (s *mergeServiceTestSuite) TestMergeSuccessfully() {
	target := &model.Customer{ID: "a-target", Name: "Jan Novak", Email: "jan@x.sk"}
	source := &model.Customer{ID: "b-source", Name: "Ján Novák", Phone: "0900123456"}

	first := time.Date(2023, time.March, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2024, time.August, 15, 9, 0, 0, 0, time.UTC)
	finalStats := model.CustomerStats{
		RentalCount:  5,
		FirstRental:  &first,
		LastRental:   &last,
		TotalRevenue: decimal.NewFromInt(450),
	}

	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "a-target").Return(target, nil).Once()
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "b-source").Return(source, nil).Once()
	s.customerRpsMock.On("Update", s.ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()
	s.rentalRpsMock.On("ReassignOwner", s.ctx, "b-source", "a-target").Return(int64(2), nil).Once()
	s.customerRpsMock.On("DeleteByID", s.ctx, "b-source").Return(true, nil).Once()
	s.rentalRpsMock.On("StatsByCustomerID", s.ctx, "a-target").Return(&finalStats, nil).Once()
	s.customerCacheMock.On("DeleteByID", s.ctx, "a-target").Return(nil).Once()
	s.customerCacheMock.On("DeleteByID", s.ctx, "b-source").Return(nil).Once()

	req := &model.MergeRequest{
		TargetCustomerID: "a-target",
		SourceCustomerID: "b-source",
		MergedData:       model.MergedData{Name: "Ján Novák", Email: "jan@x.sk", Phone: "0900123456"},
	}

	s.T().Log("the merge must rewrite target identity, migrate rentals, drop source and report combined stats")
	{
		res, err := s.mergeSvc.MergeCustomers(s.ctx, req)
		s.Require().NoError(err)
		s.Assert().Equal("a-target", res.MergedCustomerID)
		s.Assert().Equal(int64(2), res.MergedRentals)
		s.Assert().Equal(5, res.FinalStats.RentalCount)
		s.Assert().True(res.FinalStats.TotalRevenue.Equal(decimal.NewFromInt(450)))
		s.Assert().Equal(&first, res.FinalStats.FirstRental)
		s.Assert().Equal(&last, res.FinalStats.LastRental)

		s.Assert().Equal("Ján Novák", target.Name, "approved identity must be written to the surviving record")
		s.Assert().Equal("0900123456", target.Phone)
	}
}

func (s *mergeServiceTestSuite) TestMergeRepeatedRequestFails() {
	target := &model.Customer{ID: "a-target", Name: "Ján Novák"}
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "a-target").Return(target, nil).Once()
	s.customerRpsMock.On("FindByIDForUpdate", s.ctx, "b-source").Return(nil, nil).Once()

	req := &model.MergeRequest{
		TargetCustomerID: "a-target",
		SourceCustomerID: "b-source",
		MergedData:       model.MergedData{Name: "Ján Novák"},
	}

	s.T().Log("replaying a merge request after success must fail on the deleted source, not merge again")
	{
		_, err := s.mergeSvc.MergeCustomers(s.ctx, req)
		var notFoundErr *errs.EntryNotFoundErr
		s.Assert().ErrorAs(err, &notFoundErr)
		s.rentalRpsMock.AssertNotCalled(s.T(), "ReassignOwner", mock.Anything, mock.Anything, mock.Anything)
	}
}

func (s *mergeServiceTestSuite) TestStatsForMissingCustomer() {
	s.customerRpsMock.On("FindByID", s.ctx, "ghost").Return(nil, nil).Once()

	_, err := s.mergeSvc.StatsByCustomerID(s.ctx, "ghost")
	var notFoundErr *errs.EntryNotFoundErr
	s.Assert().ErrorAs(err, &notFoundErr)
	s.rentalRpsMock.AssertNotCalled(s.T(), "StatsByCustomerID", mock.Anything, mock.Anything)
}

// start merge service test suite
func TestMergeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(mergeServiceTestSuite))
}
