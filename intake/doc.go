// Package intake is the HTTP surface of the service. It accepts PDF
// uploads, persists them to local disk and enqueues ingestion jobs, and
// it serves retrieval-augmented answers over the indexed corpus. Upload
// handling is fire-and-forget: the response acknowledges receipt, not
// completed ingestion.
package intake
