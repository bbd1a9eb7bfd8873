/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package mindboggle

import (
	"context"
	"os/exec"
	"sort"
	"time"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// Node names one step of the workflow: an external function or compiled
// binary with its declared input and output fields. No computation happens
// here, nodes only configure the external engine.
type Node struct {
	Name    string
	Command string
	Args    []string
	Inputs  map[string]string
	Outputs map[string]string
}

// connection wires one node's output field into another node's input field.
type connection struct {
	from, fromField string
	to, toField     string
}

// Workflow is a directed acyclic graph of nodes.
type Workflow struct {
	Name        string
	nodes       map[string]*Node
	order       []string
	connections []connection
}

// NewWorkflow returns an empty workflow.
func NewWorkflow(name string) *Workflow {
	return &Workflow{Name: name, nodes: map[string]*Node{}}
}

// Add registers a node. Node names must be unique within the workflow.
func (w *Workflow) Add(n *Node) error {
	if _, exists := w.nodes[n.Name]; exists {
		return errors.Errorf("workflow %s already has a node named %s", w.Name, n.Name)
	}
	if n.Inputs == nil {
		n.Inputs = map[string]string{}
	}
	if n.Outputs == nil {
		n.Outputs = map[string]string{}
	}
	w.nodes[n.Name] = n
	w.order = append(w.order, n.Name)
	return nil
}

// Node returns the named node, or nil.
func (w *Workflow) Node(name string) *Node {
	return w.nodes[name]
}

// Len returns the number of nodes.
func (w *Workflow) Len() int {
	return len(w.nodes)
}

// Connect wires from's output field into to's input field. Both nodes and
// the output field must already exist; the input field is created on the
// downstream node.
func (w *Workflow) Connect(from, fromField, to, toField string) error {
	src, ok := w.nodes[from]
	if !ok {
		return errors.Errorf("workflow %s has no node %s", w.Name, from)
	}
	dst, ok := w.nodes[to]
	if !ok {
		return errors.Errorf("workflow %s has no node %s", w.Name, to)
	}
	value, ok := src.Outputs[fromField]
	if !ok {
		return errors.Errorf("node %s has no output field %s", from, fromField)
	}

	dst.Inputs[toField] = value
	w.connections = append(w.connections, connection{
		from: from, fromField: fromField,
		to: to, toField: toField,
	})
	return nil
}

// Sort returns the nodes in topological order, or an error if the
// connections form a cycle. Insertion order breaks ties so repeated sorts
// are stable.
func (w *Workflow) Sort() ([]*Node, error) {
	indegree := map[string]int{}
	downstream := map[string][]string{}
	for _, name := range w.order {
		indegree[name] = 0
	}
	for _, c := range w.connections {
		indegree[c.to]++
		downstream[c.from] = append(downstream[c.from], c.to)
	}

	var ready []string
	for _, name := range w.order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	var sorted []*Node
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, w.nodes[name])
		for _, next := range downstream[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(sorted) != len(w.nodes) {
		return nil, errors.Errorf("workflow %s has a cycle among its connections", w.Name)
	}
	return sorted, nil
}

// Runner executes one external command. The indirection keeps the graph
// testable without spawning processes.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, command string, args ...string) error {
	output, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s failed: %s", command, string(output))
	}
	return nil
}

// Run executes every node in topological order. The first failing node stops
// the run, downstream nodes depend on its outputs.
func (w *Workflow) Run(ctx context.Context, runner Runner) error {
	timer := metrics.GetOrRegisterTimer(`Mindboggle.Run.Latency`, nil)
	begin := time.Now()
	defer func() { timer.Update(time.Since(begin)) }()

	sorted, err := w.Sort()
	if err != nil {
		return err
	}

	for _, n := range sorted {
		log.WithFields(log.Fields{
			"Method":   "mindboggle.Run",
			"Workflow": w.Name,
			"Node":     n.Name,
			"Command":  n.Command,
		}).Info("Running workflow node")

		args := append([]string(nil), n.Args...)
		fields := make([]string, 0, len(n.Inputs))
		for field := range n.Inputs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			args = append(args, "--"+field, n.Inputs[field])
		}
		if err := runner.Run(ctx, n.Command, args...); err != nil {
			return errors.Wrapf(err, "workflow %s node %s", w.Name, n.Name)
		}
	}

	log.WithFields(log.Fields{
		"Method":   "mindboggle.Run",
		"Workflow": w.Name,
		"Nodes":    len(sorted),
	}).Info("Workflow complete")
	return nil
}
