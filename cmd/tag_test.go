package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.write("SOP-2.json", storyOther)
	env.run("publish", "SOP-1.json", "--author", "tester")
	env.run("publish", "SOP-2.json", "--author", "tester")

	env.equals(env.run("tag", "add", "SOP-1", "Approved", "site-north"), "SOP-1: approved, site-north")
	env.run("tag", "add", "SOP-2", "approved")

	env.equals(env.run("tag", "ls", "SOP-1"), "approved\nsite-north")
	env.equals(env.run("tag", "find", "approved"), "SOP-1\nSOP-2")
	env.contains(env.run("tag", "ls"), "approved\t2")

	env.contains(env.run("tag", "rm", "SOP-1", "site-north"), "Removed 1 tag(s) from SOP-1")
	env.equals(env.run("tag", "ls", "SOP-1"), "approved")

	_, err := env.runErr("tag", "add", "SOP-9", "approved")
	assert.Error(t, err, "unknown story")
	_, err = env.runErr("tag", "add", "SOP-1", "has space")
	assert.Error(t, err, "invalid tag")
}

func TestVacuum(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.write("SOP-2.json", storyOther)
	env.run("publish", "SOP-1.json", "--author", "tester")
	env.run("publish", "SOP-2.json", "--author", "tester")
	env.run("tag", "add", "SOP-1", "approved")

	env.contains(env.run("vacuum", "--force", "--author", "tester"), "No retired stories to vacuum")

	env.run("rm", "SOP-1", "--author", "tester")
	env.contains(env.run("vacuum", "-n", "--author", "tester"), "Would delete: SOP-1")
	env.contains(env.run("ls", "-A"), "SOP-1 [retired]")

	env.contains(env.runStdin("n\n", "vacuum", "--author", "tester"), "Cancelled")

	out := env.run("vacuum", "--force", "--author", "tester")
	env.contains(out, "Vacuumed 1 version(s)")
	env.contains(out, "Vacuumed 1 row(s) from tag")
	env.equals(env.run("ls", "-A"), "SOP-2")
	env.equals(env.run("tag", "find", "approved"), "")

	out = env.run("vacuum", "--force", "--older-than", "7d", "--author", "tester")
	env.contains(out, "No retired stories to vacuum")
}
