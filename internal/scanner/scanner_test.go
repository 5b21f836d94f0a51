package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userMapperXML = `<?xml version="1.0" encoding="UTF-8"?>
<mapper namespace="com.sqlguard.mapper.UserMapper">
  <select id="findById">
    SELECT * FROM users
    <where>
      <if test="id != null">id = #{id}</if>
    </where>
  </select>
  <delete id="removeInactive">
    DELETE FROM users WHERE last_login &lt; #{cutoff}
  </delete>
  <update id="touch">
    UPDATE users SET updated_at = now()
  </update>
  <insert id="create">
    INSERT INTO users (name) VALUES (#{name})
  </insert>
  <resultMap id="userResult" type="User"/>
</mapper>
`

const notAMapperXML = `<?xml version="1.0" encoding="UTF-8"?>
<beans xmlns="http://www.springframework.org/schema/beans"/>
`

func writeFixture(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestScanExtractsStatementsFromMapper(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "UserMapper.xml", userMapperXML)

	stmts, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, stmts, 4)

	byID := map[string]Statement{}
	for _, s := range stmts {
		byID[s.MapperID] = s
	}

	find := byID["com.sqlguard.mapper.UserMapper.findById"]
	assert.Equal(t, "SELECT", find.SqlType)
	assert.Contains(t, find.SQL, "SELECT * FROM users")
	assert.Contains(t, find.SQL, "id = #{id}")

	del := byID["com.sqlguard.mapper.UserMapper.removeInactive"]
	assert.Equal(t, "DELETE", del.SqlType)
	assert.Contains(t, del.SQL, "DELETE FROM users WHERE last_login")
}

func TestScanSkipsNonMapperXML(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "applicationContext.xml", notAMapperXML)

	stmts, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestScanSkipsNonXMLFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "README.md", "not xml at all")

	stmts, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestScanWalksNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, filepath.Join("a", "b", "UserMapper.xml"), userMapperXML)

	stmts, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, stmts, 4)
}

func TestScanMapperWithoutNamespaceUsesBareID(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Anon.xml", `<mapper><select id="all">SELECT 1</select></mapper>`)

	stmts, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "all", stmts[0].MapperID)
}
