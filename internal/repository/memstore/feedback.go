package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

type questionRepo struct{ s *Store }

func (r *questionRepo) Create(_ context.Context, question *domain.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	question.ID = r.s.nextID("questions")
	question.CreatedAt, question.UpdatedAt = now, now
	r.s.questions[question.ID] = *question
	return nil
}

func (r *questionRepo) Update(_ context.Context, question *domain.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.questions[question.ID]
	if !ok {
		return errNoRows()
	}
	question.CreatedAt = existing.CreatedAt
	question.UpdatedAt = r.s.now()
	r.s.questions[question.ID] = *question
	return nil
}

// Delete cascades to the ratings answering the question.
func (r *questionRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[id]; !ok {
		return errNoRows()
	}
	delete(r.s.questions, id)
	for rid, rating := range r.s.ratings {
		if rating.QuestionID == id {
			delete(r.s.ratings, rid)
		}
	}
	return nil
}

func (r *questionRepo) GetByID(_ context.Context, id int64) (*domain.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	question, ok := r.s.questions[id]
	if !ok {
		return nil, errNoRows()
	}
	return &question, nil
}

func (r *questionRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var questions []domain.Question
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if q, ok := r.s.questions[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (r *questionRepo) List(_ context.Context, filter repository.QuestionFilter) ([]domain.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var questions []domain.Question
	for _, q := range r.s.questions {
		if filter.Type != nil && q.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !q.IsActive {
			continue
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return questions, nil
}

type ratingRepo struct{ s *Store }

// CreateBatch checks every reference before inserting anything.
func (r *ratingRepo) CreateBatch(_ context.Context, ratings []*domain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rating := range ratings {
		if _, ok := r.s.questions[rating.QuestionID]; !ok {
			return repository.NewForeignKeyViolation(repository.ConstraintRatingQuestionFK)
		}
		switch rating.Target.Kind() {
		case domain.KindAgent:
			if _, ok := r.s.agents[rating.Target.ID()]; !ok {
				return repository.NewForeignKeyViolation(repository.ConstraintRatingAgentFK)
			}
		case domain.KindEmployee:
			if _, ok := r.s.employees[rating.Target.ID()]; !ok {
				return repository.NewForeignKeyViolation(repository.ConstraintRatingEmployeeFK)
			}
		default:
			return repository.NewForeignKeyViolation(repository.ConstraintRatingAgentFK)
		}
	}
	now := r.s.now()
	for _, rating := range ratings {
		rating.ID = r.s.nextID("ratings")
		rating.CreatedAt = now
		stored := *rating
		stored.QuestionText = ""
		r.s.ratings[rating.ID] = stored
	}
	return nil
}

func (r *ratingRepo) Delete(_ context.Context, id int64) (*domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rating, ok := r.s.ratings[id]
	if !ok {
		return nil, errNoRows()
	}
	delete(r.s.ratings, id)
	return &rating, nil
}

func (r *ratingRepo) List(_ context.Context, filter repository.RatingFilter) ([]domain.Rating, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ratings []domain.Rating
	for _, rating := range r.s.ratings {
		if !filter.Target.IsNone() && rating.Target != filter.Target {
			continue
		}
		rating.QuestionText = r.s.questions[rating.QuestionID].Text
		ratings = append(ratings, rating)
	}
	newest(ratings, func(r domain.Rating) time.Time { return r.CreatedAt }, func(r domain.Rating) int64 { return r.ID })
	return paginate(ratings, filter.Limit, filter.Offset), len(ratings), nil
}

func (r *ratingRepo) Stats(_ context.Context, target domain.Target) (domain.RatingStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count, sum int64
	for _, rating := range r.s.ratings {
		if !target.IsNone() && rating.Target != target {
			continue
		}
		count++
		sum += int64(rating.Value)
	}
	if count == 0 {
		return domain.RatingStats{}, nil
	}
	return domain.NewRatingStats(count, float64(sum)/float64(count)), nil
}

func (r *ratingRepo) StatsByProfile(_ context.Context, kind domain.ProfileKind, ids []int64) (map[int64]domain.RatingStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	counts := make(map[int64]int64)
	sums := make(map[int64]int64)
	for _, rating := range r.s.ratings {
		if rating.Target.Kind() != kind || !wanted[rating.Target.ID()] {
			continue
		}
		counts[rating.Target.ID()]++
		sums[rating.Target.ID()] += int64(rating.Value)
	}
	result := make(map[int64]domain.RatingStats, len(counts))
	for id, count := range counts {
		result[id] = domain.NewRatingStats(count, float64(sums[id])/float64(count))
	}
	return result, nil
}

type complaintRepo struct{ s *Store }

func (r *complaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	switch complaint.Target.Kind() {
	case domain.KindAgent:
		if _, ok := r.s.agents[complaint.Target.ID()]; !ok {
			return repository.NewForeignKeyViolation(repository.ConstraintComplaintAgent)
		}
	case domain.KindEmployee:
		if _, ok := r.s.employees[complaint.Target.ID()]; !ok {
			return repository.NewForeignKeyViolation(repository.ConstraintComplaintEmployee)
		}
	}
	now := r.s.now()
	complaint.ID = r.s.nextID("complaints")
	complaint.CreatedAt, complaint.UpdatedAt = now, now
	r.s.complaints[complaint.ID] = *complaint
	return nil
}

// Update persists the admin-editable fields.
func (r *complaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.complaints[complaint.ID]
	if !ok {
		return errNoRows()
	}
	existing.Status = complaint.Status
	existing.Priority = complaint.Priority
	existing.Resolution = complaint.Resolution
	existing.ResolvedAt = complaint.ResolvedAt
	existing.UpdatedAt = r.s.now()
	complaint.UpdatedAt = existing.UpdatedAt
	r.s.complaints[complaint.ID] = existing
	return nil
}

func (r *complaintRepo) Delete(_ context.Context, id int64) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, errNoRows()
	}
	delete(r.s.complaints, id)
	return &complaint, nil
}

func (r *complaintRepo) GetByID(_ context.Context, id int64) (*domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, errNoRows()
	}
	return &complaint, nil
}

func (r *complaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var complaints []domain.Complaint
	for _, c := range r.s.complaints {
		if !filter.Target.IsNone() && c.Target != filter.Target {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && c.Priority != *filter.Priority {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if !matches(filter.Search, c.Subject, c.ComplainantName, c.ComplainantEmail) {
			continue
		}
		complaints = append(complaints, c)
	}
	newest(complaints, func(c domain.Complaint) time.Time { return c.CreatedAt }, func(c domain.Complaint) int64 { return c.ID })
	return paginate(complaints, filter.Limit, filter.Offset), len(complaints), nil
}

func (r *complaintRepo) Count(_ context.Context, target domain.Target, status *domain.ComplaintStatus) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, c := range r.s.complaints {
		if !target.IsNone() && c.Target != target {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		count++
	}
	return count, nil
}

type statsRepo struct{ s *Store }

func (r *statsRepo) AdminTotals(_ context.Context) (domain.AdminTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := domain.AdminTotals{
		Agents:     int64(len(r.s.agents)),
		Employees:  int64(len(r.s.employees)),
		Ratings:    int64(len(r.s.ratings)),
		Complaints: int64(len(r.s.complaints)),
	}
	var sum int64
	for _, rating := range r.s.ratings {
		sum += int64(rating.Value)
	}
	for _, c := range r.s.complaints {
		if c.Status == domain.ComplaintStatusPending {
			totals.PendingComplaints++
		}
	}
	for _, u := range r.s.users {
		if !u.IsApproved {
			totals.PendingApprovals++
		}
	}
	if totals.Ratings > 0 {
		totals.AverageRating = domain.NewRatingStats(totals.Ratings, float64(sum)/float64(totals.Ratings)).Average
	}
	return totals, nil
}
