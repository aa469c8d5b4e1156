package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Authoring commands work on files and need no ledger.
func TestValidate_ExitCodes(t *testing.T) {
	env := newBareEnv(t)
	env.write("good.json", storyV1)
	env.write("bad.json", storyBad)
	env.write("broken.json", `{"frames":[`)

	out, code := env.exitCode("validate", "good.json")
	assert.Equal(t, 0, code)
	env.contains(out, "OK: validation passed")

	out, code = env.exitCode("validate", "bad.json")
	assert.Equal(t, 1, code)
	env.contains(out, "FAIL: 1 error")

	out, code = env.exitCode("validate", "broken.json")
	assert.Equal(t, 2, code)
	env.contains(out, "could not be read")

	_, code = env.exitCode("validate", "missing.json")
	assert.Equal(t, 2, code)
}

func TestValidate_CheckFiles(t *testing.T) {
	env := newBareEnv(t)
	env.write("stories/SOP-7.json", `{"sop_id":"SOP-7","start_code":"A","frames":[
 {"frame_code":"A","title":"Start","image":"/outputs/images/SOP-7/A.png",
  "FAQ_Loc":"/outputs/faq/","FAQ_File":"a.html"}]}`)

	out, code := env.exitCode("validate", "--check-files", "stories/SOP-7.json")
	assert.Equal(t, 1, code, "missing image is an error")
	env.contains(out, "A.png")

	env.write("outputs/images/SOP-7/A.png", "png")
	env.write("outputs/faq/a.html", "<p>faq</p>")
	out, code = env.exitCode("validate", "--check-files", "stories/SOP-7.json")
	assert.Equal(t, 0, code, out)
	env.contains(out, "OK: validation passed")
	assert.NotContains(t, out, "not found")

	_, code = env.exitCode("validate", "--check-files", "--raw", "stories/SOP-7.json")
	assert.Equal(t, 1, code, "raw references resolve unchanged against the image root")
}

func TestNormaliseFixTextBuild(t *testing.T) {
	env := newBareEnv(t)
	env.write("SOP-1.json", storyV1)

	env.contains(env.run("normalise", "SOP-1.json"), "../images/SOP-1/A.png")

	env.write("mojibake.json", `{"sop_id":"SOP-8","start_code":"A","frames":[{"frame_code":"A","title":"Donâ€™t panic"}]}`)
	env.run("fix-text", "-i", "mojibake.json")
	env.contains(env.read("mojibake.json"), "Don’t panic")

	env.contains(env.run("build", "SOP-1.json"), "SOP-1_player.html")
	env.contains(env.read("outputs/players/SOP-1_player.html"), "Isolate power")
}

func TestConvert(t *testing.T) {
	env := newBareEnv(t)
	env.write("SOP-5.csv", "Code,Title,SOP_path,Image_sub_url,Next1_Code,Start_Here\n"+
		"A,Begin,outputs/images/SOP-5,a.png,B,yes\n"+
		"B,Finish,outputs/images/SOP-5,b.png,,\n")

	env.contains(env.run("convert", "--out", "SOP-5.json", "SOP-5.csv"), "Wrote SOP-5.json with 2 steps. Start=A")

	_, code := env.exitCode("validate", "SOP-5.json")
	assert.Equal(t, 0, code)
}
