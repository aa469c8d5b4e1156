package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Global(t *testing.T) {
	env := newBareEnv(t)

	out := env.run("config", "author.name", "Tester")
	env.contains(out, "author.name = Tester (global)")
	assert.FileExists(t, filepath.Join(env.home, ".sopstory", "config.yaml"))
	env.equals(env.run("config", "author.name"), "Tester")

	env.contains(env.run("config"), "author.name: Tester")
}

func TestConfig_Local(t *testing.T) {
	env := newTestEnv(t)
	env.run("config", "author.name", "Global")

	out := env.run("config", "--local", "author.name", "Local")
	env.contains(out, "(local)")
	env.equals(env.run("config", "author.name"), "Local")
}

func TestConfig_AuthorFromConfig(t *testing.T) {
	env := newTestEnv(t)
	env.write("SOP-1.json", storyV1)
	env.run("config", "author.name", "Configured")

	env.run("publish", "SOP-1.json")
	env.contains(env.run("ls", "-l"), "Configured")
}

func TestConfig_InvalidKey(t *testing.T) {
	env := newBareEnv(t)

	_, err := env.runErr("config", "no.such.key", "x")
	assert.Error(t, err)
}

func TestDB(t *testing.T) {
	env := newTestEnv(t)

	env.contains(env.run("db"), "shared")

	env.contains(env.run("db", "--local"), "local")
	env.contains(env.read(".sopstory/.gitignore"), "sopstory.db")
	env.contains(env.run("db"), "local")

	env.contains(env.run("db", "--share"), "shared")
	assert.NotContains(t, env.read(".sopstory/.gitignore"), "sopstory.db")

	_, err := env.runErr("db", "--local", "--share")
	assert.Error(t, err)
}

func TestGuide(t *testing.T) {
	env := newBareEnv(t)

	env.contains(env.run("guide"), "sopstory")
	env.contains(env.run("guide", "publish"), "publish")

	_, err := env.runErr("guide", "no-such-topic")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	env := newBareEnv(t)
	assert.NotEmpty(t, env.run("version"))
}
