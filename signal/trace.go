package signal

// Trace is an observer registered on a Node (SigNode_Trace). Tracing never
// modifies state; it only observes resolved-level changes.
type Trace struct {
	node       *Node
	cb         func(node *Node, value Level, clientData interface{})
	clientData interface{}
}

// Trace registers cb to fire whenever the resolved group level seen at n
// changes. Multiple traces per node are allowed; invocation order among
// peers is unspecified.
func (n *Node) Trace(cb func(node *Node, value Level, clientData interface{}), clientData interface{}) *Trace {
	t := &Trace{node: n, cb: cb, clientData: clientData}
	n.traces = append(n.traces, t)
	return t
}

// Untrace removes a previously registered trace (SigNode_Untrace).
func (t *Trace) Untrace() {
	n := t.node
	for i, other := range n.traces {
		if other == t {
			n.traces = append(n.traces[:i], n.traces[i+1:]...)
			return
		}
	}
}
