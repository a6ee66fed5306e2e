// Package domain contains the core entities and value objects for stamper.
//
// This package has no dependencies on infrastructure concerns (PDF rendering,
// print spooling, logging) and contains only the rules of a stamp batch.
//
// # Entities
//
//   - [Job]: one batch run (starting serial, copy count, destination, paper)
//   - [Unit]: one stamp within a batch, identified by its serial
//   - [PaperSize]: the supported paper sizes and their device values
//   - [Report]: the outcome of a batch, including the run journal
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
