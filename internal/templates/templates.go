// Package templates provides the embedded document and schema templates
// scaffolded by `spool create` and `spool init`.
//
// Texture and placeholder style (<!-- TODO: ... -->) carried over from the
// teacher's internal/templates package; content replaced with spool's own
// document set.
package templates

// ModuleMd is scaffolded at modules/<NNN>_<name>/module.md.
const ModuleMd = `# MODULE

## Purpose

<!-- TODO: describe what this module groups and why it exists, in at least a couple of sentences -->

## Scope

<!-- TODO: list what falls inside this module's boundary -->

## Changes

<!-- spool list changes keeps this section informational only; it is not parsed -->
`

// ProposalMd is scaffolded at changes/<id>/proposal.md.
const ProposalMd = `# PROPOSAL

## Summary

<!-- TODO: 1-2 sentence summary of the change -->

## Motivation

<!-- TODO: why is this change needed -->

## Approach

<!-- TODO: how will this be implemented, at a high level -->

## Risks

<!-- TODO: what could go wrong -->
`

// DesignMd is scaffolded at changes/<id>/design.md.
const DesignMd = `# DESIGN

## Overview

<!-- TODO: architecture and key decisions -->

## Components

<!-- TODO: list the pieces being added or changed -->

## Alternatives Considered

<!-- TODO: what else was considered and why it was rejected -->
`

// SpecMd is scaffolded at changes/<id>/specs/<spec-id>/spec.md and at
// specs/<id>/spec.md.
const SpecMd = `# SPEC

## Purpose

<!-- TODO: describe what this spec covers, in at least a couple of sentences -->

## Requirements

### Requirement: <!-- TODO: title -->

<!-- TODO: requirement text; must contain SHALL or MUST -->

#### Scenario: <!-- TODO: scenario title -->

<!-- TODO: concrete given/when/then narrative -->
`

// EnhancedTasksTemplate returns the wave-based tasks.md scaffold for a
// newly created change, reproduced from spool-rs's
// enhanced_tasks_template (a feature the distilled spec.md omitted but
// the original implementation ships, and the source of the CLI's "tasks"
// subcommand family).
func EnhancedTasksTemplate(changeID string) string {
	return `# TASKS: ` + changeID + `

## Wave 1
- **Depends On**: None

### Task 1.1: <!-- TODO: first task name -->
- **Files**: ` + "`path/to/file.go`" + `
- **Dependencies**: None
- **Action**: <!-- TODO: what to do -->
- **Verify**: <!-- TODO: how to check it worked -->
- **Done When**: <!-- TODO: concrete completion condition -->
- **Updated At**: <!-- TODO: YYYY-MM-DD -->
- **Status**: [ ] pending

## Checkpoints

### Task checkpoint-1: <!-- TODO: checkpoint name -->
- **Dependencies**: All Wave 1 tasks
- **Updated At**: <!-- TODO: YYYY-MM-DD -->
- **Status**: [ ] pending

<!--
Use "spool tasks status <change>" to see progress,
"spool tasks next <change>" to see what is ready,
"spool tasks start|complete|shelve|unshelve <change> <task-id>" to mutate status,
"spool tasks show <change> <task-id>" to see one task's detail.
-->
`
}

// SpoolYaml is scaffolded at changes/<id>/.spool.yaml.
func SpoolYaml(schemaName string) string {
	return "schema: " + schemaName + "\n"
}

// SpecDrivenSchemaYaml is the built-in spec-driven schema shipped under
// schemas/spec-driven/schema.yaml.
const SpecDrivenSchemaYaml = `name: spec-driven
version: 1
description: Proposal, design and spec artifacts feeding a tracked task list.
artifacts:
  - id: proposal
    generates: proposal.md
    description: Summary, motivation and high-level approach.
    template: proposal.md.tmpl
    instruction: Draft the proposal covering summary, motivation, approach and risks.
  - id: design
    generates: design.md
    description: Architecture and key decisions.
    template: design.md.tmpl
    instruction: Write the design once the proposal is accepted.
    requires: [proposal]
  - id: specs
    generates: specs/**/*.md
    description: Per-change spec deltas.
    template: spec.md.tmpl
    instruction: Write one or more spec deltas under specs/<id>/spec.md.
    requires: [proposal]
  - id: tasks
    generates: tasks.md
    description: Wave-based task breakdown.
    template: tasks.md.tmpl
    instruction: Break the design and specs into waves of atomic tasks.
    requires: [design, specs]
apply:
  tracks: tasks.md
  instruction: Read context files, work through pending tasks in order, and update their status as you go.
`
