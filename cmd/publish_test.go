package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)

	out := env.run("publish", "SOP-1.json", "--author", "tester", "-m", "first")
	env.contains(out, "Published SOP-1 v1 (")

	out = env.run("publish", "SOP-1.json", "--author", "tester")
	env.contains(out, "Unchanged SOP-1 v1 (")

	env.write("SOP-1.json", storyV2)
	out = env.run("publish", "SOP-1.json", "--author", "tester", "-m", "add verify")
	env.contains(out, "Published SOP-1 v2 (")
}

func TestPublish_Stdin(t *testing.T) {
	env := newTestEnv(t)

	out := env.runStdin(storyOther, "publish", "-", "--author", "tester")
	env.contains(out, "Published SOP-2 v1 (")
}

func TestPublish_RequiresAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)

	out, err := env.runErr("publish", "SOP-1.json")
	assert.Error(t, err)
	env.contains(out, "author")
	env.equals(env.run("ls"), "")
}

func TestPublish_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.write("bad.json", storyBad)
	env.write("broken.json", `{"frames":[`)

	out, code := env.exitCode("publish", "bad.json", "--author", "tester")
	assert.Equal(t, 1, code)
	env.contains(out, "not published")

	_, code = env.exitCode("publish", "broken.json", "--author", "tester")
	assert.Equal(t, 2, code)

	env.equals(env.run("ls"), "")
}

func TestPublish_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)

	out := env.run("publish", "SOP-1.json", "--author", "tester", "-o", "json")
	env.contains(out, `"published": true`)
	env.contains(out, `"story": "SOP-1"`)
}

func TestLs(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.write("SOP-2.json", storyOther)
	env.run("publish", "SOP-1.json", "--author", "tester")
	env.run("publish", "SOP-2.json", "--author", "tester")

	env.equals(env.run("ls"), "SOP-1\nSOP-2")
	env.equals(env.run("ls", "SOP-2"), "SOP-2")

	out := env.run("ls", "-l")
	env.contains(out, "STORY")
	env.contains(out, "v1")
	env.contains(out, "tester")
}

func TestCat(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV2)
	env.run("publish", "SOP-1.json", "--author", "tester")

	out := env.run("cat", "SOP-1")
	env.contains(out, `"sop_id"`)
	env.contains(out, "../images/SOP-1/A.png")

	out = env.run("cat", "SOP-1", "--steps")
	env.contains(out, "> A  Isolate power  -> B (Done)")
	env.contains(out, "  C  Verify dead  [end]")

	_, err := env.runErr("cat", "SOP-9")
	assert.Error(t, err)
}

func TestHistoryAndDiff(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.run("publish", "SOP-1.json", "--author", "tester", "-m", "first")
	env.write("SOP-1.json", storyV2)
	env.run("publish", "SOP-1.json", "--author", "tester", "-m", "add verify")

	out := env.run("history", "SOP-1")
	env.contains(out, "VER")
	env.contains(out, "first")
	env.contains(out, "add verify")

	out = env.run("diff", "SOP-1")
	env.contains(out, "Verify dead")
	env.contains(out, "added: C")

	out = env.run("diff", "SOP-1", "--versions", "1:2")
	env.contains(out, "added: C")
}

func TestRmRestore(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.write("SOP-2.json", storyOther)
	env.run("publish", "SOP-1.json", "--author", "tester")
	env.run("publish", "SOP-2.json", "--author", "tester")

	env.contains(env.run("rm", "SOP-1", "--author", "tester"), "Retired SOP-1")
	env.equals(env.run("ls"), "SOP-2")
	env.contains(env.run("ls", "-A"), "SOP-1 [retired]")
	env.equals(env.run("ls", "-D"), "SOP-1 [retired]")

	out, err := env.runErr("publish", "SOP-1.json", "--author", "tester")
	assert.Error(t, err, "retired stories refuse publication")
	env.contains(out, "retired")

	env.contains(env.run("restore", "SOP-1", "--author", "tester"), "Restored SOP-1")
	env.equals(env.run("ls"), "SOP-1\nSOP-2")

	out = env.run("rm", "SOP", "--prefix", "--author", "tester")
	env.contains(out, "Retired SOP-1")
	env.contains(out, "Retired SOP-2")
	env.contains(env.run("rm", "SOP", "--prefix", "--author", "tester"), "No stories found with prefix SOP")
}

func TestRevert(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.run("publish", "SOP-1.json", "--author", "tester")
	env.write("SOP-1.json", storyV2)
	env.run("publish", "SOP-1.json", "--author", "tester")

	out := env.run("revert", "SOP-1", "1", "--author", "tester")
	env.contains(out, "Reverted SOP-1 to v1 (now v3)")
	assert.NotContains(t, env.run("cat", "SOP-1"), "Verify dead")

	out = env.run("revert", "SOP-1", "1", "--author", "tester")
	env.contains(out, "already matches")
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.write("SOP-1.json", storyV1)
	src.write("SOP-2.json", storyOther)
	src.run("publish", "SOP-1.json", "--author", "tester")
	src.run("publish", "SOP-2.json", "--author", "tester")

	out := src.run("export", "exported")
	src.contains(out, "Exported: SOP-1 v1 -> ")
	src.contains(out, "Exported: SOP-2 v1 -> ")
	src.contains(src.read("exported/SOP-1.json"), "../images/SOP-1/A.png")

	dst := newTestEnv(t)
	dst.write("in/SOP-1.json", src.read("exported/SOP-1.json"))
	dst.write("in/SOP-2.json", src.read("exported/SOP-2.json"))
	dst.write("in/bad.json", storyBad)

	out = dst.run("import", "in", "-n", "--author", "tester")
	dst.contains(out, "Would publish:")
	dst.equals(dst.run("ls"), "")

	out, code := dst.exitCode("import", "in", "--author", "tester")
	assert.Equal(t, 1, code, "a rejected file fails the import")
	dst.contains(out, "-> SOP-1 v1")
	dst.contains(out, "-> SOP-2 v1")
	dst.contains(out, "Rejected:")
	dst.equals(dst.run("ls"), "SOP-1\nSOP-2")

	out, _ = dst.exitCode("import", "in", "--author", "tester")
	assert.Equal(t, 2, strings.Count(out, "Unchanged:"))
}
