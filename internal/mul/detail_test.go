package mul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechdex/mechdex/internal/model"
)

const sampleDetailHTML = `<!DOCTYPE html>
<html>
<body>
<h2>Atlas AS7-D</h2>
<div class="panel panel-default">
  <div class="panel-heading">
    <div class="media">
      <div class="media-body">
        <a href="/Era/Details/11">Succession Wars (2781 - 3049)</a>
      </div>
    </div>
  </div>
  <div class="panel-body">
    <table>
      <tbody>
        <tr><td><a href="/Faction/Details/17">Federated Suns</a></td></tr>
        <tr><td><a href="/Faction/Details/19">Lyran Commonwealth</a></td></tr>
      </tbody>
    </table>
  </div>
</div>
<div class="panel panel-default">
  <div class="panel-heading">
    <div class="media">
      <div class="media-body">
        <a href="/Era/Details/13">Clan Invasion (3050 - 3061)</a>
      </div>
    </div>
  </div>
  <div class="panel-body">
    <table>
      <tbody>
        <tr><td><a href="/Faction/Details/24">ComStar</a></td></tr>
      </tbody>
    </table>
  </div>
</div>
</body>
</html>`

func TestParseAvailability(t *testing.T) {
	records, recognized := ParseAvailability(sampleDetailHTML)
	assert.True(t, recognized)
	require.Len(t, records, 3)

	assert.Equal(t, model.AvailabilityRecord{EraName: "Succession Wars", FactionName: "Federated Suns"}, records[0])
	assert.Equal(t, model.AvailabilityRecord{EraName: "Succession Wars", FactionName: "Lyran Commonwealth"}, records[1])
	assert.Equal(t, model.AvailabilityRecord{EraName: "Clan Invasion", FactionName: "ComStar"}, records[2])
}

func TestParseAvailabilityRecognizedButEmpty(t *testing.T) {
	records, recognized := ParseAvailability("<html><body><h2>Unit With No Availability</h2></body></html>")
	assert.True(t, recognized)
	assert.Empty(t, records)
}

func TestParseAvailabilityUnrecognizedDocument(t *testing.T) {
	records, recognized := ParseAvailability("<html><body><p>error page</p></body></html>")
	assert.False(t, recognized)
	assert.Empty(t, records)
}

func TestStripYearRange(t *testing.T) {
	assert.Equal(t, "Succession Wars", stripYearRange("Succession Wars (2781 - 3049)"))
	assert.Equal(t, "ilClan", stripYearRange("ilClan"))
}
