package mcpserver

// DatasetFormatContract describes the people dataset file format that LLM
// consumers should follow when uploading datasets.
const DatasetFormatContract = `# Othala Dataset Format Contract

A dataset is one file in the data directory holding an array of flat person
records. JSON (` + "`" + `.json` + "`" + `) and YAML (` + "`" + `.yaml` + "`" + `, ` + "`" + `.yml` + "`" + `) are accepted.

## Record

` + "```" + `json
{
  "slug": "jane-doe-1900",      // REQUIRED, unique across the file
  "name": "Jane Doe",           // REQUIRED, used to resolve parents
  "sex": "f",                   // REQUIRED, "m" or "f"
  "born": 1900,                 // year of birth
  "died": 1980,                 // year of death, 0 or absent if unknown
  "country": "BE",              // OPTIONAL, country of birth
  "motherName": "Mary Doe",     // OPTIONAL, null allowed
  "fatherName": null            // OPTIONAL, null allowed
}
` + "```" + `

## Rules

1. **Parents are linked by exact name.** ` + "`" + `motherName` + "`" + ` and ` + "`" + `fatherName` + "`" + ` must equal
   the ` + "`" + `name` + "`" + ` of another record, character for character. When several records
   share that name, the first one (files in path order, records in file order) wins.
   A name without a matching record is kept as plain text.
2. **Slugs** are lowercase kebab-case and unique within a file; append the birth year
   when names repeat (` + "`" + `jan-van-brussel-1714` + "`" + `).
3. **Years** are integers. ` + "`" + `died` + "`" + ` must not be earlier than ` + "`" + `born` + "`" + `.
4. **File names** are plain (no directories), ASCII, ending in a dataset extension.
5. **Encoding** is UTF-8. Names may use any script.

## Upload

- Use the ` + "`" + `upload_dataset` + "`" + ` tool with an http(s) URL or a data URI
  (` + "`" + `data:application/json;base64,...` + "`" + `).
- The file is validated before it is written; an invalid file is rejected as a whole.
- Existing files are never overwritten; pick a new file name instead.

## Example

` + "```" + `yaml
- slug: emile-haverbeke-1877
  name: Emile Haverbeke
  sex: m
  born: 1877
  died: 1968
  motherName: Maria Sturm
  fatherName: Carolus Haverbeke
- slug: carolus-haverbeke-1832
  name: Carolus Haverbeke
  sex: m
  born: 1832
  died: 1905
` + "```" + `
`
