package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Submission is the JSON document posted to the order endpoint.
type Submission struct {
	OrderID   string  `json:"orderId"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Product   string  `json:"product"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// ErrSubmission matches every SubmissionError.
var ErrSubmission = errors.New("order submission failed")

// SubmissionError means the endpoint was unreachable or answered with a
// non-2xx status. Status is 0 for transport failures.
type SubmissionError struct {
	Status int
	Cause  error
}

func (e *SubmissionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("order submission failed: status=%d", e.Status)
	}
	return fmt.Sprintf("order submission failed: %v", e.Cause)
}

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

func (e *SubmissionError) Unwrap() error { return e.Cause }

// Submitter posts orders to a remote script endpoint. Success means a 2xx
// status; the response body is not inspected.
type Submitter struct {
	Endpoint string
	Client   *http.Client
}

func NewSubmitter(endpoint string, timeout time.Duration) *Submitter {
	return &Submitter{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Submit sends sub exactly once.
func (s *Submitter) Submit(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &SubmissionError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &SubmissionError{Cause: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SubmissionError{Status: resp.StatusCode}
	}
	return nil
}
