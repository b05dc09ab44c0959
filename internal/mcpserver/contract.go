package mcpserver

// GedcomSubsetContract describes the GEDCOM records and tags shajara reads.
// LLM consumers should consult it before interpreting tool output or
// preparing source files.
const GedcomSubsetContract = `# Shajara GEDCOM Subset

Shajara reads a small, line-oriented subset of GEDCOM. Anything outside this
subset is ignored silently; a source never fails to load because of an
unknown tag.

## Line shape

` + "```" + `
LEVEL [@XREF@] TAG [VALUE]
` + "```" + `

- LEVEL is a non-negative integer. Only levels 0, 1 and 2 are interpreted.
- Line endings may be LF, CRLF or CR. Blank lines are skipped.
- Identifiers keep their @ delimiters (e.g. ` + "`" + `@I1@` + "`" + `).

## Records

| Level 0      | Level 1 | Level 2      | Meaning                              |
|--------------|---------|--------------|--------------------------------------|
| ` + "`@X@ INDI`" + ` | NAME    | GIVN, SURN   | Name; ` + "`/Surname/`" + ` marks the surname |
|              | SEX     |              | M, F, anything else is unknown       |
|              | BIRT    | DATE         | Birth date                           |
|              | DEAT    | DATE         | Marks the person deceased            |
|              | FAMS    |              | Family where the person is a spouse  |
|              | FAMC    |              | Family where the person is a child   |
| ` + "`@X@ FAM`" + `  | HUSB    |              | Husband id                           |
|              | WIFE    |              | Wife id                              |
|              | CHIL    |              | Child id, in birth order as listed   |

## Conventions

1. **Privacy.** A person whose name is exactly ` + "`PRIVATE`" + ` (any case) is private.
   Private people are hidden from trees, search and lineage.
2. **Dates.** ` + "`D MON YYYY`" + ` becomes DD/MM/YYYY, ` + "`MON YYYY`" + ` becomes MM/YYYY.
   Any other value is kept verbatim.
3. **Nasab.** Display names follow the male line: ` + "`Given بن Father بن Grandfather Surname`" + `
   for men and ` + "`Given بنت Father ...`" + ` for women, two generations deep by default.
4. **Roots.** When a family configures no root, the tree starts from the
   person without parents who has the most descendants.
5. **Search** ignores case and Arabic diacritics; every query word must appear
   in the name.

## Example

` + "```" + `
0 @I1@ INDI
1 NAME Omar /Saeed/
1 SEX M
1 BIRT
2 DATE 1 JAN 1900
1 FAMS @F1@
0 @I2@ INDI
1 NAME Khaled /Saeed/
1 SEX M
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 CHIL @I2@
0 TRLR
` + "```" + `
`
