package ports

import "context"

// Spooler is the operating system's print spooler.
type Spooler interface {
	// Destinations lists the queue names the spooler knows about.
	Destinations(ctx context.Context) ([]string, error)

	// Open acquires a handle on the named queue. The caller must Close it.
	Open(ctx context.Context, queue string) (Device, error)

	// Submit hands a file to the named queue without configuring it.
	// The returned status is the spooler's exit status.
	Submit(ctx context.Context, queue, file string, opts SubmitOptions) (SubmitResult, error)

	// PendingJobs returns the number of jobs queued on the named queue.
	PendingJobs(ctx context.Context, queue string) (int, error)
}

// Device is an open handle on a print queue.
type Device interface {
	// Name returns the queue name.
	Name() string

	// Options returns the queue's configurable options.
	Options(ctx context.Context) ([]DeviceOption, error)

	// Apply sets an option as the queue's default.
	Apply(ctx context.Context, name, value string) error

	// Submit hands a file to the queue.
	Submit(ctx context.Context, file string, opts SubmitOptions) (SubmitResult, error)

	// Close releases the handle. Calls after Close fail.
	Close() error
}

// DeviceOption is one entry of a queue's configuration block.
type DeviceOption struct {
	Name    string
	Label   string
	Choices []string
	Current string
}

// SubmitOptions are per-job settings.
type SubmitOptions struct {
	Media string
	Title string

	// OutputPath is where a file-writing queue such as a PDF printer
	// should place its output.
	OutputPath string
}

// SubmitResult is the spooler's answer to a submission.
type SubmitResult struct {
	JobID  string
	Status int
}
