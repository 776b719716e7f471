package framework

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

const excludedByFilter = "excluded by filter parameters"

type environment struct {
	ctx        context.Context
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context represents a test or subtest. It implements require.TestingT, so assertions from the
// testify assert and require packages can be used with it directly.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
	unselected  bool
}

// Run runs a root test scope. The results of every subtest started within action are
// accumulated in the returned Results.
//
// The ctx parameter is made available to tests through Context.Ctx; canceling it does not
// interrupt a test, but any blocking operation that uses Ctx() will return early.
func Run(
	ctx context.Context,
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if ctx == nil {
		ctx = context.Background()
	}
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		ctx:        ctx,
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	firstChild := len(c.env.results.Tests)
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		c.runDeferred()
		if len(c.id.Path) == 0 {
			return
		}
		if c.unselected && !c.failed && !anyRan(c.env.results.Tests[firstChild:]) {
			c.skipped = true
			c.skipReason = excludedByFilter
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func anyRan(tests []TestResult) bool {
	for _, t := range tests {
		if !t.Skipped {
			return true
		}
	}
	return false
}

func (c *Context) runDeferred() {
	for i := len(c.deferred) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil && r != c {
					c.failed = true
					err := fmt.Errorf("panic in deferred cleanup: %+v", r)
					c.errors = append(c.errors, err)
					c.env.testLogger.TestError(c.id, err)
				}
			}()
			c.deferred[i]()
		}()
	}
	c.deferred = nil
}

// Ctx returns the context.Context that was passed to Run.
func (c *Context) Ctx() context.Context {
	return c.env.ctx
}

// Run runs a subtest. Subtests run synchronously, in the order they are declared.
func (c *Context) Run(name string, action func(*Context)) {
	c.runSubtest(name, action, false)
}

// Group runs a subtest that only contains further subtests. A group that the filter does not
// select is still entered so that its subtests can be selected individually, and is reported
// as skipped if none of them ran.
func (c *Context) Group(name string, action func(*Context)) {
	c.runSubtest(name, action, true)
}

func (c *Context) runSubtest(name string, action func(*Context), group bool) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	selected := c.env.filter == nil || c.env.filter(id)
	if !selected && !group {
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.testLogger.TestSkipped(id, excludedByFilter)
		return
	}
	if err := c.env.ctx.Err(); err != nil {
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.testLogger.TestSkipped(id, "test run was interrupted")
		return
	}
	c1 := &Context{
		id:         id,
		env:        c.env,
		unselected: !selected,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow is called by the require package when a test should fail and immediately exit.
func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the current test ends, whether it passed or not.
// Deferred functions run in reverse order of registration.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
