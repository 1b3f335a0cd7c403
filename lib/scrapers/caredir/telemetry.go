package caredir

import (
	"leadharvest/lib/restyutil"
	"leadharvest/lib/telemetry"
)

var tracer = telemetry.Tracer("leadharvest.scrapers.caredir")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput makes every client built after the call dump
// its exchanges to out. Call it before constructing a provider.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
