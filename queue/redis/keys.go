package redis

// Key layout, all under one namespace:
//
//	{ns}:pending     list of job IDs awaiting a worker (LPUSH / LMOVE)
//	{ns}:processing  list of claimed job IDs
//	{ns}:claims      zset of claimed IDs scored by visibility deadline
//	{ns}:dead        list of dead-lettered job IDs, most recent first
//	{ns}:job:{id}    hash holding the job payload, attempt count, last error
const (
	pendingSuffix    = ":pending"
	processingSuffix = ":processing"
	claimsSuffix     = ":claims"
	deadSuffix       = ":dead"
	jobSuffix        = ":job:"
)

const (
	fieldPayload   = "payload"
	fieldAttempt   = "attempt"
	fieldLastError = "last_error"
)

func (q *Queue) pendingKey() string    { return q.namespace + pendingSuffix }
func (q *Queue) processingKey() string { return q.namespace + processingSuffix }
func (q *Queue) claimsKey() string     { return q.namespace + claimsSuffix }
func (q *Queue) deadKey() string       { return q.namespace + deadSuffix }
func (q *Queue) jobKey(id string) string {
	return q.namespace + jobSuffix + id
}
