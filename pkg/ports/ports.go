package ports

// Runtype tells the application which port triggered a run.
type Runtype string

const (
	CLI  Runtype = "cli"
	HTTP Runtype = "http"
)
