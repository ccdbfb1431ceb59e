// Package services implements the business logic layer of the gridsight
// application. It provides a clean separation between HTTP handlers and the
// analysis core, ensuring that orchestration rules are centralized and
// testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate orchestration rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Running uploads through decode, analysis, persistence, and the
//	  optional narrative step
//	- Keeping the in-memory index of completed analyses
//	- Error handling and transformation
//	- Cross-cutting concerns (logging)
package services
