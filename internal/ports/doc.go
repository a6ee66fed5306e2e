// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Converter]: Turns the template into a PDF inside a scoped session
//   - [Compositor]: Overlays the serial label onto a converted page
//   - [Spooler]: The OS print spooler (destinations, devices, job queues)
//   - [Logger]: Structured logging abstraction
//   - [Progress]: Batch progress reporting
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with LibreOffice,
// pdfcpu, CUPS and zerolog.
package ports
