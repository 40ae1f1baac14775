// Package flow validates a Gatus server before it is configured.
//
// [Flow.StepUser] checks the URL, runs one test fetch and either reports a
// form error or creates an [Entry]. [StepOptions] validates the scan
// interval. [UniqueID] slugifies a URL so the same server cannot be
// configured twice.
package flow
