package mcpserver

// ArtifactFormatContract describes the canonical Markdown artifact
// format that LLM consumers should follow when creating or updating
// artifacts.
const ArtifactFormatContract = `# Raido Artifact Format Contract

Every artifact stored in Raido MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: "REQ-001"                       # REQUIRED - unique id, also the file name stem
title: "Human-readable title"       # REQUIRED - primary display name
status: "draft"                     # OPTIONAL - defaults to "draft"
priority: "medium"                  # OPTIONAL - defaults to "medium"
author: "Jane Doe"                  # OPTIONAL
verificationMethod: "test"          # OPTIONAL - requirements only
revision: "01"                      # Managed by the server; bumped on every update
useCaseIds:                         # OPTIONAL - related use case ids
  - "UC-001"
parentIds: []                       # OPTIONAL - empty lists render as []
---

# Human-readable title

## Description

Body text in standard Markdown.

## Requirement Text

The normative requirement statement.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "`" + `---` + "`" + ` fences come first;
   leading blank lines are tolerated but not produced.
2. **String values are double-quoted.** Backslash, double-quote, and
   newline are escaped as ` + "`" + `\\` + "`" + `, ` + "`" + `\"` + "`" + `, and ` + "`" + `\n` + "`" + `.
   Numbers and booleans are unquoted.
3. **List values** use block form (` + "`" + `  - "item"` + "`" + ` per line); empty
   lists render as ` + "`" + `[]` + "`" + ` on the key line.
4. **Dates** (dateCreated, lastModified, deletedAt) are epoch
   milliseconds; the server stamps them.
5. **The H1 heading repeats the title.** Content lives in named H2
   sections; section names depend on the artifact kind (requirements
   use Description / Requirement Text / Rationale / Comments).
6. **Never set isDeleted or deletedAt yourself.** Deletion is a server
   operation that marks the file in place.
7. **Encoding** is UTF-8 with a trailing newline.

## Kinds

requirement, usecase, testcase, information, risk, document, link,
project, user. Each kind lives in its own workspace directory
(requirements/, usecases/, ...) and the file name is ` + "`" + `<id>.md` + "`" + `.
`
