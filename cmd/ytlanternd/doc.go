// Command ytlanternd is the background companion to the ytlantern CLI. It
// holds a single-instance lock and runs periodic retention sweeps over the
// shared storage root so completed downloads do not accumulate forever.
package main
