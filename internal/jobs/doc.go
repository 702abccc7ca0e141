// Package jobs provides scheduled background tasks for the order service.
//
// Jobs are driven by github.com/robfig/cron/v3. They observe the order store
// and report on it; none of them changes an order's status.
//
// # Available Jobs
//
// StaleOrderReporter periodically counts orders that have stayed in the
// created status longer than a threshold. Such orders lost their payment
// authorization (for example because the process restarted before the
// created event was handled) and will not progress on their own. The count is
// logged and exported as the orders_stale gauge.
package jobs
