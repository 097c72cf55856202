// Copyright 2025 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exceptions

// Package names that predate the naming policy. Renaming them would break
// existing consumers, so naming findings against them are downgraded to
// warnings.
var defaultLegacyExceptions = []string{
	"libacl1",
	"libaio1",
	"libalut0",
	"libapr-1-0",
	"libaprutil-1-0",
	"libartskde1",
	"libattr1",
	"libcdaudio1",
	"libcdk4",
	"libcheck0",
	"libchewing3",
	"libchm0",
	"libclucene0",
	"libdar4",
	"libdbh-4_5-4",
	"libdbus-qt-1-1",
	"libdm0",
	"libdns_sd1",
	"libefence0",
	"libEMF1",
	"libevolutionglue",
	"libf2c0",
	"libffi4",
	"libflaim5_2",
	"libfontenc1",
	"libfreeradius-client2",
	"libgcc_s1",
	"libgcc_s4", // only for hppa
	"libgconfmm-2_6-1",
	"libgfortran3",
	"libgif4",
	"libgimpprint1",
	"libgladesharpglue-2",
	"libglibsharpglue-2",
	"libgltt0",
	"libglut3",
	"libGLw1",
	"libgmcop1",
	"libgnet-2_0-0",
	"libgnomecanvasmm-2_6-1",
	"libgnomecups-1_0-1",
	"libgnomemm-2_6-1",
	"libgnomeprintui-2-2-0",
	"libgnomesharpglue-2",
	"libgnomeuimm-2_6-1",
	"libgomp1",
	"libgsfglue",
	"libgsf-gnome-1-114",
	"libgtksourceview-1_0-0",
	"libgtkspell0",
	"libhangul0",
	"libICE6",
	"libid3-3_8-3",
	"libid3tag0",
	"libidn11",
	"libiec61883-0",
	"libieee1284-3",
	"libilbc0",
	"libind_helper0",
	"libiterm1",
	"libjackasyn0",
	"libkakasi2",
	"libkeyutils1",
	"libksba8",
	"liblo0",
	"libmal0",
	"libmcrypt4",
	"libmdbodbc0",
	"libmeanwhile1",
	"libmhash2",
	"libmikmod2",
	"libmng1",
	"libnet6-1_3-0",
	"libnl1",
	"libnscd1",
	"libobjc3",
	"libodbcinstQ1",
	"liboil-0_3-0",
	"liboop4",
	"libopenal0",
	"libopenal1",
	"libpgeasy3",
	"libportaudio2",
	"libqnotify0",
	"libQt3Support4",
	"libqtc1",
	"libqtsharp0",
	"libQtSql4",
	"libquadmath0",
	"librdf0",
	"librsync1",
	"libsamplerate0",
	"libsecprog0",
	"libsexy2",
	"libsigc-1_2-5",
	"libSM6",
	"libsndfile1",
	"libstdc++6",
	"libstroke0",
	"libthai0",
	"libutempter0",
	"libvisual-0_4-0",
	"libXau6",
	"libxclass0_9_2",
	"libXdmcp6",
	"libXext6",
	"libxfce4util4",
	"libxfcegui4-4",
	"libXfixes3",
	"libxflaim3_2",
	"libXiterm1",
	"libxkbfile1",
	"libxml2-2",
	"libXp6",
	"libXprintUtil1",
	"libXrender1",
	"libXt6",
	"libXv1",
	"libz1",
	"libzio0",
}

// System libraries any library package may depend on without that dependency
// being blamed on bundled binaries.
var defaultEssentialDependencies = []string{
	"ld-linux.so.2",
	"libacl.so.1",
	"libanl.so.1",
	"libanonymous.so.2",
	"libattr.so.1",
	"libaudit.so.0",
	"libauparse.so.0",
	"libBrokenLocale.so.1",
	"libbz2.so.1",
	"libcidn.so.1",
	"libck-connector.so.0",
	"libcom_err.so.2",
	"libcrack.so.2",
	"libcrypto.so.0.9.8",
	"libcrypt.so.1",
	"libc.so.6",
	"libdbus-1.so.3",
	"libdbus-glib-1.so.2",
	"libdes425.so.3",
	"libdl.so.2",
	"libexpat.so.1",
	"libform.so.5",
	"libformw.so.5",
	"libgcc_s.so.1",
	"libgcrypt.so.11",
	"libgdbm_compat.so.3",
	"libgdbm.so.3",
	"libgfortran3",
	"libgio-2.0.so.0",
	"libglib-2.0.so.0",
	"libgmodule-2.0.so.0",
	"libgobject-2.0.so.0",
	"libgpg-error.so.0",
	"libgssapi_krb5.so.2",
	"libgssrpc.so.4",
	"libgthread-2.0.so.0",
	"libhal.so.1",
	"libhal-storage.so.1",
	"libhd.so.14",
	"libhistory.so.5",
	"libk5crypto.so.3",
	"libkadm5clnt.so.5",
	"libkadm5srv.so.5",
	"libkdb5.so.4",
	"libkeyutils.so.1",
	"libkrb4.so.2",
	"libkrb5.so.3",
	"libkrb5support.so.0",
	"libksba.so.8",
	"liblber-2.4.so.2",
	"libldap-2.4.so.2",
	"libldap_r-2.4.so.2",
	"liblogin.so.2",
	"liblog_syslog.so.1",
	"libltdl.so.3",
	"libmagic.so.1",
	"libmenu.so.5",
	"libmenuw.so.5",
	"libm.so.6",
	"libncurses.so.5",
	"libncursesw.so.5",
	"libnscd.so.1",
	"libnsl.so.1",
	"libnss_compat.so.2",
	"libnss_dns.so.2",
	"libnss_files.so.2",
	"libnss_hesiod.so.2",
	"libnss_nisplus.so.2",
	"libnss_nis.so.2",
	"libopenct.so.1",
	"libopensc.so.2",
	"libpamc.so.0",
	"libpam_misc.so.0",
	"libpam.so.0",
	"libpanel.so.5",
	"libpanelw.so.5",
	"libparted-1.8.so.8",
	"libpcrecpp.so.0",
	"libpcreposix.so.0",
	"libpcre.so.0",
	"libpcsclite.so.1",
	"libpkcs15init.so.2",
	"libpolkit-dbus.so.2",
	"libpolkit-grant.so.2",
	"libpolkit.so.2",
	"libpopt.so.0",
	"libpthread.so.0",
	"libpth.so.20",
	"libreadline.so.5",
	"libresmgr.so.0.9.8",
	"libresmgr.so.1",
	"libresolv.so.2",
	"librt.so.1",
	"libsasl2.so.2",
	"libsasldb.so.2",
	"libscconf.so.2",
	"libslp.so.1",
	"libsmbios.so.1",
	"libssl.so.0.9.8",
	"libss.so.2",
	"libstdc++.so.6",
	"libthread_db.so.1",
	"libtic.so.5",
	"libusb-0.1.so.4",
	"libusbpp-0.1.so.4",
	"libutil.so.1",
	"libuuid.so.1",
	"libvolume_id.so.0",
	"libwrap.so.0",
	"libX11.so.6",
	"libX11-xcb.so.1",
	"libXau.so.6",
	"libxcb-composite.so.0",
	"libxcb-damage.so.0",
	"libxcb-dpms.so.0",
	"libxcb-glx.so.0",
	"libxcb-randr.so.0",
	"libxcb-record.so.0",
	"libxcb-render.so.0",
	"libxcb-res.so.0",
	"libxcb-screensaver.so.0",
	"libxcb-shape.so.0",
	"libxcb-shm.so.0",
	"libxcb.so.1",
	"libxcb-sync.so.0",
	"libxcb-xevie.so.0",
	"libxcb-xf86dri.so.0",
	"libxcb-xfixes.so.0",
	"libxcb-xinerama.so.0",
	"libxcb-xlib.so.0",
	"libxcb-xprint.so.0",
	"libxcb-xtest.so.0",
	"libxcb-xvmc.so.0",
	"libxcb-xv.so.0",
	"libxcrypt.so.1",
	"libzio.so.0",
	"libz.so.1",
}
