package mcpserver

// DocumentFormat describes the newsletter document layout for LLM consumers
// that read it or add releases to it.
const DocumentFormat = `# Newsletter Document Format

The newsletter is a single UTF-8 Markdown file.

## Structure

` + "```" + `markdown
# October 19

## News:
- [Spring Boot 3.5.1 available now](https://spring.io/blog/boot-3-5-1)

## Recent Enterprise Releases:
- June 17
  - Spring Boot 3.4.7 (Enterprise)

## Releases coming soon:
- Reactor 2025.0.1 (Jul 8)

## Videos:
- [Spring Tips: Virtual Threads](https://youtu.be/vt) - SpringSourceDev

## Demos:
- [native-demo](https://github.com/dashaun-tanzu/native-demo) - GraalVM native image
` + "```" + `

## Rules

1. The first line is an H1 with the issue date ("January 2" form).
2. Each section starts with ` + "`## <Name>:`" + `. The older bare ` + "`<Name>:`" + ` form
   is still recognized and left as written. When both forms are present the
   ` + "`## <Name>:`" + ` heading is the section.
3. A section body runs until the next heading or the first blank line.
   Text after that blank line belongs to no section and is never touched.
4. Each heading may appear only once in the same form. A document with a
   repeated heading is rejected until it is fixed by hand.
5. Releases are grouped under their date; new releases are added on top of
   the existing list.
6. Every other section is replaced wholesale on refresh.

## Tools

- ` + "`show_document`" + ` returns the Markdown.
- ` + "`list_sections`" + ` returns the outline as JSON.
- ` + "`refresh_section`" + ` fetches fresh records for one section.
- ` + "`add_release`" + ` prepends one release; dates accept "July 25", "Jul 25" or
  "2025-07-25".
- ` + "`preview_news`" + ` renders the latest news without writing.
`
