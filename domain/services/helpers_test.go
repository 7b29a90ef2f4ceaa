package services

import (
	"testing"
	"time"

	"lotto/domain/entities"
	"lotto/domain/testhelpers"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return testNow
}

// serviceMocks aggregates every collaborator a domain service takes
type serviceMocks struct {
	UserRepo        *testhelpers.MockUserRepository
	DrawRepo        *testhelpers.MockDrawRepository
	TicketRepo      *testhelpers.MockTicketRepository
	TransactionRepo *testhelpers.MockTransactionRepository
	EventPublisher  *testhelpers.MockEventPublisher
	Generator       *testhelpers.MockGenerator
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		UserRepo:        new(testhelpers.MockUserRepository),
		DrawRepo:        new(testhelpers.MockDrawRepository),
		TicketRepo:      new(testhelpers.MockTicketRepository),
		TransactionRepo: new(testhelpers.MockTransactionRepository),
		EventPublisher:  new(testhelpers.MockEventPublisher),
		Generator:       new(testhelpers.MockGenerator),
	}
}

func (m *serviceMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.DrawRepo.AssertExpectations(t)
	m.TicketRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Generator.AssertExpectations(t)
}

func (m *serviceMocks) ticketService() *ticketService {
	svc := NewTicketService(m.UserRepo, m.DrawRepo, m.TicketRepo, m.TransactionRepo,
		m.EventPublisher, m.Generator, entities.DefaultGameRules()).(*ticketService)
	svc.now = fixedNow
	svc.draws.now = fixedNow
	return svc
}

func (m *serviceMocks) drawService() *drawService {
	svc := NewDrawService(m.DrawRepo, m.EventPublisher, entities.DefaultGameRules()).(*drawService)
	svc.now = fixedNow
	return svc
}

func (m *serviceMocks) settlementService() *settlementService {
	svc := NewSettlementService(m.DrawRepo, m.TicketRepo, m.UserRepo, m.TransactionRepo,
		m.EventPublisher, m.Generator, entities.DefaultGameRules()).(*settlementService)
	svc.now = fixedNow
	return svc
}

func createTestDraw(id int64, opts ...func(*entities.Draw)) *entities.Draw {
	draw := &entities.Draw{
		ID:         id,
		DrawNumber: entities.FormatDrawNumber(id),
		DrawTime:   testNow.Add(time.Hour),
		Status:     entities.DrawStatusScheduled,
		CreatedAt:  testNow.Add(-time.Minute),
	}
	for _, opt := range opts {
		opt(draw)
	}
	return draw
}

func createTestUser(id, balance int64) *entities.User {
	return &entities.User{
		ID:         id,
		ExternalID: id * 1000,
		Username:   "player",
		Balance:    balance,
		CreatedAt:  testNow.Add(-24 * time.Hour),
	}
}

func createTestTicket(id, userID, drawID int64, numbers []int) *entities.Ticket {
	return &entities.Ticket{
		ID:           id,
		UserID:       userID,
		DrawID:       drawID,
		TicketNumber: "ticket",
		Numbers:      numbers,
		Status:       entities.TicketStatusActive,
		Price:        50,
		PurchasedAt:  testNow.Add(-30 * time.Minute),
	}
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
