package bus

// Arbiter serializes the three master ports onto the bus. One transaction is
// in flight at a time; the winning request is latched at acceptance and the
// destination's result is delivered to that master one tick later. Priority
// is fixed: data write, then data read, then instruction fetch.
type Arbiter struct {
	memory Target
	bridge Target

	requests  [NumPorts]*Transaction
	responses [NumPorts]Response

	busy    bool
	owner   Port
	current Transaction
	wait    int
}

// NewArbiter creates an arbiter routing to the given memory and peripheral
// destinations.
func NewArbiter(memory, bridge Target) *Arbiter {
	return &Arbiter{memory: memory, bridge: bridge}
}

// Request posts a transaction on a port. The request stands until the
// arbiter accepts it; reposting the same transaction each tick is harmless.
func (a *Arbiter) Request(port Port, tx Transaction) {
	t := tx
	a.requests[port] = &t
}

// Response returns the port's response for this tick. Valid holds for one
// tick only.
func (a *Arbiter) Response(port Port) Response {
	return a.responses[port]
}

// Busy reports whether a transaction is in flight.
func (a *Arbiter) Busy() bool { return a.busy }

// Reset abandons the in-flight transaction and drops all standing requests
// and responses, so nothing launched before a reset can land after it.
func (a *Arbiter) Reset() {
	a.requests = [NumPorts]*Transaction{}
	a.responses = [NumPorts]Response{}
	a.busy = false
}

// Tick advances the arbiter: completes the in-flight transaction when its
// latency expires, otherwise grants the highest-priority standing request.
func (a *Arbiter) Tick() {
	a.responses = [NumPorts]Response{}

	if a.busy {
		a.wait--
		if a.wait > 0 {
			return
		}
		a.complete()
		return
	}

	for port := PortDataWrite; port < NumPorts; port++ {
		if a.requests[port] == nil {
			continue
		}
		a.current = *a.requests[port]
		a.owner = port
		a.requests[port] = nil
		a.busy = true
		a.wait = 1
		return
	}
}

func (a *Arbiter) complete() {
	target := a.memory
	if IsPeripheral(a.current.Addr) {
		target = a.bridge
	}

	var data uint32
	if a.current.Write {
		target.WriteWord(a.current.Addr, a.current.Data, a.current.Mask)
	} else {
		data = target.ReadWord(a.current.Addr)
	}

	a.responses[a.owner] = Response{Valid: true, Data: data}
	a.busy = false
}
