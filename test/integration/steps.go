package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/centricity/ordersync/pkg/model"
	"github.com/centricity/ordersync/pkg/server/middleware"
	"github.com/centricity/ordersync/pkg/sweeper"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an ordersync server is running$`, s.anOrdersyncServerIsRunning)
	sc.Step(`^the storefront "([^"]*)" has order (\d+) with status "([^"]*)" created (\d+) hours? ago$`, s.storefrontHasOrder)

	sc.Step(`^I trigger a sweep via the admin API$`, s.iTriggerASweep)
	sc.Step(`^I trigger a sweep without a token$`, s.iTriggerASweepWithoutToken)
	sc.Step(`^I request "([^"]*)"$`, s.iRequest)

	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^order (\d+) in store "([^"]*)" should have status "([^"]*)"$`, s.orderShouldHaveStatus)
	sc.Step(`^a transition should be recorded for order (\d+) in store "([^"]*)"$`, s.transitionShouldBeRecorded)
	sc.Step(`^the latest sweep should report (\d+) updated orders?$`, s.latestSweepShouldReportUpdated)
	sc.Step(`^the response should not contain "([^"]*)"$`, s.responseShouldNotContain)
}

func (s *StepsContext) anOrdersyncServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) storefrontHasOrder(subdomain string, orderID int, status string, hoursAgo int) error {
	createdAt := time.Now().UTC().
		Add(-time.Duration(hoursAgo) * time.Hour).
		Format(sweeper.APITimeFormat)
	s.tc.Storefront.addOrder(subdomain, int64(orderID), status, createdAt)
	return nil
}

func (s *StepsContext) iTriggerASweep() error {
	token, err := middleware.GenerateToken([]byte(adminSecret), "integration", time.Minute)
	if err != nil {
		return fmt.Errorf("failed to generate admin token: %w", err)
	}
	return s.postSweep(token)
}

func (s *StepsContext) iTriggerASweepWithoutToken() error {
	return s.postSweep("")
}

func (s *StepsContext) postSweep(token string) error {
	req, err := http.NewRequest(http.MethodPost, s.tc.ServerURL+"/sweeps", nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *StepsContext) iRequest(path string) error {
	req, err := http.NewRequest(http.MethodGet, s.tc.ServerURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return s.do(req)
}

func (s *StepsContext) do(req *http.Request) error {
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	s.response = resp
	s.responseBody = body
	return nil
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

// orderShouldHaveStatus polls the fake storefront because HTTP-triggered
// sweeps run asynchronously.
func (s *StepsContext) orderShouldHaveStatus(orderID int, subdomain, want string) error {
	var got string
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := s.tc.Storefront.orderStatus(subdomain, int64(orderID))
		if !ok {
			return fmt.Errorf("order %d not found in store %s", orderID, subdomain)
		}
		got = status
		if got == want {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("order %d in store %s has status %q, want %q", orderID, subdomain, got, want)
}

func (s *StepsContext) transitionShouldBeRecorded(orderID int, subdomain string) error {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		var count int64
		err := s.tc.DB.Model(&model.Transition{}).
			Where("subdomain = ? AND order_id = ?", subdomain, int64(orderID)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("no transition recorded for order %d in store %s", orderID, subdomain)
}

func (s *StepsContext) latestSweepShouldReportUpdated(want int) error {
	var lastErr error
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if err := s.iRequest("/sweeps/latest"); err != nil {
			return err
		}
		if s.response.StatusCode == http.StatusOK {
			var run struct {
				FinishedAt *time.Time `json:"finished_at"`
				Updated    int        `json:"updated"`
			}
			if err := json.Unmarshal(s.responseBody, &run); err != nil {
				return fmt.Errorf("failed to decode sweep run: %w (body: %s)", err, s.responseBody)
			}
			if run.FinishedAt != nil {
				if run.Updated == want {
					return nil
				}
				lastErr = fmt.Errorf("latest sweep updated %d orders, want %d", run.Updated, want)
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no finished sweep run appeared (last status %d)", s.response.StatusCode)
}

func (s *StepsContext) responseShouldNotContain(needle string) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if strings.Contains(string(s.responseBody), needle) {
		return fmt.Errorf("response body contains %q", needle)
	}
	return nil
}
