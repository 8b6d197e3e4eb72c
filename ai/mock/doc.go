// Package mock provides test doubles for the ai interfaces.
//
// The mocks generate deterministic results by default and support behavior
// injection through function fields, plus call counting for assertions.
// They let business logic be tested without any external AI service.
package mock
